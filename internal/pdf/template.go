package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/estimo-app/estimo/internal/models"
)

// quoteDocument is the data handed to the quote template.
type quoteDocument struct {
	QuoteName     string
	ClientName    string
	ClientAddress string
	ClientVAT     string
	Amount        string
	VATPercent    string
	VATAmount     string
	Total         string
	PaymentURL    string
	GeneratedAt   string
}

var quoteTemplate = template.Must(template.New("quote").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Quote {{.QuoteName}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 0; }
  h1 { font-size: 22px; margin-bottom: 2px; }
  .client { margin: 18px 0; line-height: 1.5; }
  table { width: 100%; border-collapse: collapse; margin-top: 12px; }
  th, td { text-align: left; padding: 8px 10px; border-bottom: 1px solid #ddd; }
  th { background: #f4f4f4; font-weight: 600; }
  td.num, th.num { text-align: right; }
  tr.total td { font-weight: 700; border-top: 2px solid #1a1a1a; }
  .pay { margin-top: 24px; }
  .pay a { color: #2156d4; }
  .footer { margin-top: 48px; font-size: 11px; color: #888; }
</style>
</head>
<body>
<h1>Quote {{.QuoteName}}</h1>
<div class="client">
  <strong>{{.ClientName}}</strong><br>
  {{- if .ClientAddress}}
  {{.ClientAddress}}<br>
  {{- end}}
  {{- if .ClientVAT}}
  VAT: {{.ClientVAT}}
  {{- end}}
</div>
<table>
  <tr><th>Description</th><th class="num">Amount</th></tr>
  <tr><td>Net amount</td><td class="num">{{.Amount}}</td></tr>
  <tr><td>VAT ({{.VATPercent}}%)</td><td class="num">{{.VATAmount}}</td></tr>
  <tr class="total"><td>Total</td><td class="num">{{.Total}}</td></tr>
</table>
{{- if .PaymentURL}}
<p class="pay">Pay online: <a href="{{.PaymentURL}}">{{.PaymentURL}}</a></p>
{{- end}}
<p class="footer">Generated {{.GeneratedAt}}</p>
</body>
</html>
`))

// BuildQuoteHTML renders the quote document markup fed to the PDF renderer.
func BuildQuoteHTML(quote *models.Quote, client *models.Client, generatedAt time.Time) (string, error) {
	doc := quoteDocument{
		QuoteName:     quote.Name,
		ClientName:    client.Name,
		ClientAddress: client.Address,
		ClientVAT:     client.VATNumber,
		Amount:        formatMoney(quote.Amount),
		VATPercent:    trimFloat(quote.VATPercent),
		VATAmount:     formatMoney(quote.Total() - quote.Amount),
		Total:         formatMoney(quote.Total()),
		PaymentURL:    quote.PaymentURL,
		GeneratedAt:   generatedAt.UTC().Format("2006-01-02 15:04 UTC"),
	}

	var buf bytes.Buffer
	if err := quoteTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("pdf: execute quote template: %w", err)
	}
	return buf.String(), nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// trimFloat renders a percentage without trailing zeros (21 instead of 21.00).
func trimFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
