package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourorg/loancheck/internal/credit"
	"github.com/yourorg/loancheck/internal/notes"
	"github.com/yourorg/loancheck/internal/report"
)

const minLoanAmount = 1000.0

func newReconcileCmd(opts *options) *cobra.Command {
	var (
		taxID      string
		loanAmount float64
		format     string
		pdfPath    string
	)
	cmd := &cobra.Command{
		Use:   "reconcile <file>",
		Short: "Check that the valid notes in a document cover a loan",
		Long: `Reads an XML, JSON or YAML note tree or a fixed-width remittance file, validates
every note and compares the valid total with the loan amount within the configured
tolerance (RECONCILE_TOLERANCE, 15% by default).

The format is taken from --format (xml, cnab) or from the file extension.`,
		Example: `  creditctl reconcile notas.xml --tax-id 12345678000190 --loan-amount 500000
  creditctl reconcile COBRANCA.REM --tax-id 12345678000190 --loan-amount 500000 --pdf out.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if loanAmount < minLoanAmount {
				return validationError([]credit.ValidationErrorItem{{Path: "loan-amount", Message: "loan amount must be at least 1000"}})
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			cfg := notes.LoadConfig()
			if opts.noLatency {
				cfg.ValidationLatency = 0
			}
			f := notes.FormatForFilename(path, cfg.FixedWidthExtensions)
			if format != "" {
				if f, err = notes.ParseFormat(format); err != nil {
					return err
				}
			}

			logger := opts.logger(cmd)
			rec := notes.NewReconciler(notes.DefaultExtractors(), notes.NewAuthenticityValidator(cfg), cfg, logger)
			res, err := rec.Reconcile(cmd.Context(), notes.ReconciliationRequest{
				TaxID:      taxID,
				LoanAmount: loanAmount,
				Content:    content,
				Format:     f,
				Filename:   filepath.Base(path),
			})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				if err := printJSON(out, res); err != nil {
					return err
				}
			} else {
				printReconciliation(out, filepath.Base(path), res)
			}
			if pdfPath == "" {
				return nil
			}

			rcfg := report.LoadConfig()
			rcfg.PDFEnabled = true
			pdf, err := report.NewRenderer(rcfg).Render(cmd.Context(), report.Reconciliation{
				TaxID:       taxID,
				Filename:    filepath.Base(path),
				Result:      res,
				GeneratedAt: time.Now(),
			})
			if err != nil {
				return fmt.Errorf("render pdf: %w", err)
			}
			if err := os.WriteFile(pdfPath, pdf, 0o644); err != nil {
				return err
			}
			dimColor.Fprintf(cmd.ErrOrStderr(), "PDF written to %s\n", pdfPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&taxID, "tax-id", "", "Business tax ID (CNPJ)")
	cmd.Flags().Float64Var(&loanAmount, "loan-amount", 0, "Loan amount the notes must cover")
	cmd.Flags().StringVar(&format, "format", "", "Document format: xml or cnab (default: from the extension)")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "Also write a PDF report to this path (needs Chromium)")
	return cmd
}
