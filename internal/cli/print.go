package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/yourorg/loancheck/internal/credit"
	"github.com/yourorg/loancheck/internal/money"
	"github.com/yourorg/loancheck/internal/notes"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	dimColor  = color.New(color.FgHiBlack)
	headColor = color.New(color.FgCyan)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func verdict(w io.Writer, approved bool, text string) {
	if approved {
		okColor.Fprintf(w, "✓ %s\n", text)
		return
	}
	failColor.Fprintf(w, "✗ %s\n", text)
}

func printDecision(w io.Writer, app credit.Application, d credit.Decision) {
	headColor.Fprintf(w, "Credit analysis for %s (%s)\n", app.CompanyName, app.TaxID)
	fmt.Fprintf(w, "  Bureau score:     %.0f (%s)\n", d.Bureau.Score, d.Bureau.Rating)
	fmt.Fprintf(w, "  Monthly revenue:  %s\n", money.BRL(d.Revenue.MonthlyRevenue))
	fmt.Fprintf(w, "  Debt paid:        %.2f%% (%s)\n", d.PaymentHistory.PercentPaid, d.PaymentHistory.Classification)
	fmt.Fprintf(w, "  Requested:        %s\n", money.BRL(app.RequestedAmount))
	if d.MaxApprovedAmount != nil {
		fmt.Fprintf(w, "  Limit (tier %s):   %s\n", d.Tier, money.BRL(*d.MaxApprovedAmount))
	}
	if d.Approved {
		verdict(w, true, fmt.Sprintf("Approved for tier %s", d.Tier))
	} else {
		verdict(w, false, d.RejectionReason)
	}
	for _, r := range d.Recommendations {
		dimColor.Fprintf(w, "  - %s\n", r)
	}
}

func printReconciliation(w io.Writer, filename string, res notes.ReconciliationResult) {
	headColor.Fprintf(w, "Reconciliation of %s\n", filename)
	for _, n := range res.Notes {
		if n.Status == notes.StatusValid {
			okColor.Fprintf(w, "  VALID   ")
		} else {
			failColor.Fprintf(w, "  INVALID ")
		}
		fmt.Fprintf(w, "%-44s %16s", n.Key, money.BRL(n.Value))
		if n.InvalidationReason != "" {
			dimColor.Fprintf(w, "  %s", n.InvalidationReason)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  Notes: %d sent, %d valid, %d invalid\n", res.NotesSent, res.ValidNotes, res.InvalidNotes)
	fmt.Fprintf(w, "  Coverage: %.2f%% of %s\n", res.CoveragePercent, money.BRL(res.LoanAmount))
	verdict(w, res.Approved, res.Message)
}
