package pdf

import (
	"strings"
	"testing"
	"time"

	"github.com/estimo-app/estimo/internal/models"
)

func TestBuildQuoteHTML(t *testing.T) {
	quote := &models.Quote{
		Name:       "Q-2025-001",
		Amount:     100,
		VATPercent: 21,
		PaymentURL: "https://checkout.example.com/cs_test_1",
	}
	client := &models.Client{
		Name:      "Acme BV",
		Address:   "Keizersgracht 1, Amsterdam",
		VATNumber: "NL123456789B01",
	}
	generatedAt := time.Date(2025, 9, 16, 12, 0, 0, 0, time.UTC)

	html, err := BuildQuoteHTML(quote, client, generatedAt)
	if err != nil {
		t.Fatalf("build html: %v", err)
	}

	for _, want := range []string{
		"Quote Q-2025-001",
		"Acme BV",
		"Keizersgracht 1, Amsterdam",
		"NL123456789B01",
		"100.00",
		"VAT (21%)",
		"21.00",
		"121.00",
		"https://checkout.example.com/cs_test_1",
		"Generated 2025-09-16 12:00 UTC",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected html to contain %q", want)
		}
	}
}

func TestBuildQuoteHTMLWithoutPaymentLink(t *testing.T) {
	quote := &models.Quote{Name: "Q-2", Amount: 50, VATPercent: 0}
	client := &models.Client{Name: "Solo"}

	html, err := BuildQuoteHTML(quote, client, time.Now())
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	if strings.Contains(html, "Pay online") {
		t.Fatalf("expected no payment link section")
	}
	if !strings.Contains(html, "VAT (0%)") {
		t.Fatalf("expected zero vat row")
	}
}

func TestBuildQuoteHTMLEscapesMarkup(t *testing.T) {
	quote := &models.Quote{Name: "<script>alert(1)</script>", Amount: 10}
	client := &models.Client{Name: "Acme & Sons"}

	html, err := BuildQuoteHTML(quote, client, time.Now())
	if err != nil {
		t.Fatalf("build html: %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Fatalf("expected quote name to be escaped")
	}
	if !strings.Contains(html, "Acme &amp; Sons") {
		t.Fatalf("expected client name to be escaped")
	}
}
