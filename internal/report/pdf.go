// Package report prints reconciliation results to PDF through headless Chromium.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"time"
	_ "time/tzdata"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/yourorg/loancheck/internal/money"
	"github.com/yourorg/loancheck/internal/notes"
)

// ErrDisabled is returned when PDF rendering is switched off.
var ErrDisabled = errors.New("pdf report disabled")

// Reconciliation is everything the report shows.
type Reconciliation struct {
	TaxID       string
	CorrID      string
	Filename    string
	Result      notes.ReconciliationResult
	GeneratedAt time.Time
}

type Renderer struct {
	cfg Config
}

func NewRenderer(cfg Config) Renderer {
	return Renderer{cfg: cfg}
}

// Render builds the HTML and prints it to PDF. If Chromium is unavailable it
// returns an error so the caller can decide to retry or skip.
func (r Renderer) Render(ctx context.Context, data Reconciliation) ([]byte, error) {
	if !r.cfg.PDFEnabled {
		return nil, ErrDisabled
	}
	html, err := r.RenderHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if r.cfg.ChromiumPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(r.cfg.ChromiumPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	timeout := r.cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	runCtx, cancelRun := chromedp.NewContext(allocCtx)
	defer cancelRun()
	runCtx, cancelTimeout := context.WithTimeout(runCtx, timeout)
	defer cancelTimeout()

	var pdf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("data:text/html,"+url.PathEscape(html)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, perr := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if perr == nil {
				pdf = buf
			}
			return perr
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp run failed: %w", err)
	}
	return pdf, nil
}

// RenderHTML fills the report template.
func (r Renderer) RenderHTML(data Reconciliation) (string, error) {
	tz, err := time.LoadLocation(defaultString(r.cfg.TimeZone, "America/Sao_Paulo"))
	if err != nil {
		tz = time.UTC
	}
	tmpl, err := template.New("reconciliation").Funcs(template.FuncMap{
		"money": money.BRL,
		"pct":   func(v float64) string { return fmt.Sprintf("%.2f%%", v) },
	}).Parse(htmlTemplate)
	if err != nil {
		return "", err
	}
	generated := data.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		Reconciliation
		Lang string
		Now  string
	}{
		Reconciliation: data,
		Lang:           defaultString(r.cfg.Locale, "pt-BR"),
		Now:            generated.In(tz).Format("02/01/2006 15:04"),
	}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

const htmlTemplate = `<!doctype html>
<html lang="{{.Lang}}">
<head>
  <meta charset="utf-8" />
  <style>
    body { font-family: 'Helvetica Neue', Arial, sans-serif; margin: 24px; color: #0f172a; }
    h1 { margin: 0 0 8px; }
    .meta { display: flex; justify-content: space-between; margin-bottom: 16px; }
    .card { border: 1px solid #e2e8f0; border-radius: 8px; padding: 12px; margin-bottom: 12px; }
    .label { font-size: 12px; color: #475569; }
    .value { font-size: 14px; margin-bottom: 4px; }
    .approved { color: #15803d; font-weight: 700; }
    .rejected { color: #b91c1c; font-weight: 700; }
    table { width: 100%; border-collapse: collapse; margin-top: 8px; }
    th, td { padding: 8px; border-bottom: 1px solid #e2e8f0; text-align: left; }
    th { background: #f8fafc; }
    .num { text-align: right; }
  </style>
</head>
<body>
  <div class="meta">
    <h1>Fiscal note reconciliation</h1>
    <div style="text-align:right">
      <div class="label">Tax ID</div>
      <div class="value">{{.TaxID}}</div>
      <div class="label">Generated</div>
      <div class="value">{{.Now}}</div>
      {{if .CorrID}}<div class="label">Correlation</div><div class="value">{{.CorrID}}</div>{{end}}
    </div>
  </div>

  <div class="card">
    <div class="{{if .Result.Approved}}approved{{else}}rejected{{end}}">{{.Result.Message}}</div>
    {{if .Filename}}<div class="label">File</div><div class="value">{{.Filename}}</div>{{end}}
    <div class="label">Loan amount</div><div class="value">{{money .Result.LoanAmount}}</div>
    <div class="label">Valid notes total</div><div class="value">{{money .Result.ValidTotal}}</div>
    <div class="label">Coverage</div><div class="value">{{pct .Result.CoveragePercent}}</div>
    <div class="label">Notes</div>
    <div class="value">{{.Result.NotesSent}} sent, {{.Result.ValidNotes}} valid, {{.Result.InvalidNotes}} invalid</div>
  </div>

  <table>
    <thead>
      <tr><th>Key</th><th>Status</th><th>Tags</th><th class="num">Value</th></tr>
    </thead>
    <tbody>
    {{range .Result.Notes}}
      <tr>
        <td>{{.Key}}</td>
        <td>{{.Status}}{{if .InvalidationReason}}<div class="label">{{.InvalidationReason}}</div>{{end}}</td>
        <td>{{range $i, $t := .Tags}}{{if $i}}, {{end}}{{$t}}{{end}}</td>
        <td class="num">{{money .Value}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
</body>
</html>
`
