package credit

import (
	"fmt"
	"strings"

	"github.com/yourorg/loancheck/internal/money"
)

const eliminationReason = "Paid debt percentage below 50%. Customer is not eligible for loans."

const insufficientHistoryReason = "Insufficient payment history (minimum 65% required)"

var eliminationRecommendations = []string{
	"Regularize outstanding debts",
	"Improve payment history",
	"Request a new analysis after 6 months with debts regularized",
}

func ineligibleReason(score, revenue float64) string {
	reasons := make([]string, 0, 2)
	if score <= MinScore {
		reasons = append(reasons, fmt.Sprintf("Insufficient credit score (%.0f)", score))
	}
	if revenue <= MinRevenue {
		reasons = append(reasons, fmt.Sprintf("Insufficient monthly revenue (%s)", money.BRL(revenue)))
	}
	return "Customer does not meet minimum criteria: " + strings.Join(reasons, "; ")
}

func ineligibleRecommendations(score, revenue float64) []string {
	recs := make([]string, 0, 5)
	if score <= MinScore {
		recs = append(recs,
			"Improve credit score by paying debts on time",
			"Avoid new credit inquiries for 90 days",
		)
	}
	if revenue <= MinRevenue {
		recs = append(recs,
			"Increase monthly revenue before requesting a loan",
			"Consider smaller loans in other credit lines",
		)
	}
	return append(recs, "Request a new analysis in 6 months")
}

func excessReason(requested, limit float64) string {
	return fmt.Sprintf("Requested amount (%s) exceeds the approved limit (%s)", money.BRL(requested), money.BRL(limit))
}

func excessRecommendations(requested, limit float64) []string {
	return []string{
		fmt.Sprintf("Requested amount (%s) exceeds the approved limit", money.BRL(requested)),
		fmt.Sprintf("Maximum approved limit: %s", money.BRL(limit)),
		fmt.Sprintf("Consider requesting up to %s", money.BRL(limit)),
		"Increase monthly revenue to reach higher limits",
	}
}

func insufficientHistoryRecommendations(tier Tier) []string {
	return []string{
		fmt.Sprintf("Customer qualifies for tier %s but payment history blocks approval", tier),
		fmt.Sprintf("Raise the paid debt percentage to at least %.0f%%", ApprovalPercent),
		"Request a new analysis after regularizing pending debts",
	}
}

var historyRemarks = []struct {
	min    float64
	remark string
}{
	{min: PromotionPercent, remark: "Excellent payment history - Premium customer"},
	{min: ApprovalPercent, remark: "Good payment history"},
}

var tierBenefits = map[Tier][]string{
	TierG: {"Eligible for preferential rates", "May request up to 5x monthly revenue"},
	TierM: {"May request up to 3x monthly revenue"},
	TierP: {"May request up to 2x monthly revenue"},
}

func approvalRecommendations(tier Tier, percent float64) []string {
	recs := []string{fmt.Sprintf("Customer approved for tier %s", tier)}
	for _, h := range historyRemarks {
		if percent >= h.min {
			recs = append(recs, h.remark)
			break
		}
	}
	return append(recs, tierBenefits[tier]...)
}
