// Package pdf renders quote documents to PDF through a headless Chrome
// instance driven over the DevTools protocol.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	defaultRenderTimeout = 30 * time.Second

	// A4 portrait in inches.
	paperWidthIn  = 8.27
	paperHeightIn = 11.69
	marginIn      = 0.4
)

// ErrEmptyDocument indicates Chrome produced a zero-byte PDF.
var ErrEmptyDocument = errors.New("pdf: rendered document is empty")

// Renderer converts an HTML document into PDF bytes.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// Options configures the Chrome renderer.
type Options struct {
	// RemoteURL points at an already running Chrome instance. When empty a
	// local headless Chrome is launched per allocator.
	RemoteURL string
	// NoSandbox disables the Chrome sandbox. Required when running as root
	// inside a container.
	NoSandbox bool
	// Timeout bounds a single render. Zero means the default.
	Timeout time.Duration
}

// ChromeRenderer implements Renderer on top of chromedp.
type ChromeRenderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
}

// NewChromeRenderer builds the shared Chrome allocator. Browser tabs are
// created per render call.
func NewChromeRenderer(opts Options) *ChromeRenderer {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}

	r := &ChromeRenderer{timeout: timeout}
	if opts.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), opts.RemoteURL)
		return r
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), allocOpts...)
	return r
}

// RenderHTML loads the document into a fresh tab and prints it to PDF.
func (r *ChromeRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx)
	defer tabCancel()

	var data []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, errTree := page.GetFrameTree().Do(ctx)
			if errTree != nil {
				return errTree
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdfData, _, errPrint := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidthIn).
				WithPaperHeight(paperHeightIn).
				WithMarginTop(marginIn).
				WithMarginRight(marginIn).
				WithMarginBottom(marginIn).
				WithMarginLeft(marginIn).
				Do(ctx)
			if errPrint != nil {
				return errPrint
			}
			data = pdfData
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("pdf: render timed out after %v: %w", r.timeout, err)
		}
		return nil, fmt.Errorf("pdf: render failed: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	return data, nil
}

// Close tears down the Chrome allocator.
func (r *ChromeRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}
