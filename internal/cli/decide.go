package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourorg/loancheck/internal/credit"
	"github.com/yourorg/loancheck/internal/signals"
)

func newDecideCmd(opts *options) *cobra.Command {
	var app credit.Application
	cmd := &cobra.Command{
		Use:     "decide",
		Short:   "Run a credit analysis",
		Example: `  creditctl decide --tax-id 12345678000190 --company "Empresa XYZ Ltda" --amount 500000`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if errs := credit.ValidateApplication(app); len(errs) > 0 {
				return validationError(errs)
			}
			cfg := signals.LoadConfig()
			if opts.noLatency {
				cfg.BureauLatency, cfg.RevenueLatency, cfg.PaymentLatency = 0, 0, 0
			}
			src := signals.WithCache(signals.NewSimulated(cfg), cfg.CacheTTL)
			engine := credit.NewEngine(src.Bureau, src.Revenue, src.Payments, opts.logger(cmd))

			d, err := engine.Decide(cmd.Context(), app)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), d)
			}
			printDecision(cmd.OutOrStdout(), app, d)
			return nil
		},
	}
	cmd.Flags().StringVar(&app.TaxID, "tax-id", "", "Business tax ID (CNPJ)")
	cmd.Flags().StringVar(&app.CompanyName, "company", "", "Company name")
	cmd.Flags().Float64Var(&app.RequestedAmount, "amount", 0, "Requested loan amount")
	return cmd
}

func validationError(items []credit.ValidationErrorItem) error {
	msgs := make([]string, 0, len(items))
	for _, it := range items {
		msgs = append(msgs, it.Message)
	}
	return errors.New("invalid input: " + strings.Join(msgs, "; "))
}
