package exporter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

// RenderPDF prints an HTML document to PDF with a headless Chrome instance.
// A Chrome or Chromium binary must be installed.
func RenderPDF(ctx context.Context, html string) ([]byte, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithLandscape(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

// WritePDFReport renders the summary report of ds to PDF.
func WritePDFReport(ctx context.Context, title string, ds *models.Dataset, sheets []services.Sheet, kpis KPIFunc) ([]byte, error) {
	tables, err := BuildTables(ctx, ds, sheets)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteHTML(&buf, title, kpis(ds), tables); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return RenderPDF(ctx, buf.String())
}
