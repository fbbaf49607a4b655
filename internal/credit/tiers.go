package credit

// Tier is the loan size class a business qualifies for.
type Tier string

const (
	TierNone Tier = "NONE"
	TierP    Tier = "P"
	TierM    Tier = "M"
	TierG    Tier = "G"
)

const (
	// EliminationPercent is the paid-debt share below which no tier is considered.
	EliminationPercent = 50.0
	// ApprovalPercent is the paid-debt share required for final approval.
	ApprovalPercent = 65.0
	// PromotionPercent grants a one-tier promotion.
	PromotionPercent = 90.0

	MinScore   = 400.0
	MinRevenue = 10_000.0
)

type tierRule struct {
	tier       Tier
	minScore   float64
	minRevenue float64
	multiplier float64
}

// tierRules is ordered from the highest tier down. Both minimums are exclusive.
var tierRules = []tierRule{
	{tier: TierG, minScore: 800, minRevenue: 1_000_000, multiplier: 5},
	{tier: TierM, minScore: 600, minRevenue: 100_000, multiplier: 3},
	{tier: TierP, minScore: MinScore, minRevenue: MinRevenue, multiplier: 2},
}

// Classify returns the highest tier whose score and revenue minimums are both exceeded.
func Classify(score, revenue float64) Tier {
	for _, r := range tierRules {
		if score > r.minScore && revenue > r.minRevenue {
			return r.tier
		}
	}
	return TierNone
}

// Promote moves a tier one step up. G and NONE are unchanged.
func Promote(t Tier) Tier {
	switch t {
	case TierP:
		return TierM
	case TierM:
		return TierG
	default:
		return t
	}
}

// Multiplier is how many months of revenue a tier may borrow.
func Multiplier(t Tier) float64 {
	for _, r := range tierRules {
		if r.tier == t {
			return r.multiplier
		}
	}
	return 0
}

// MaxAmount is the largest loan a tier allows for the given monthly revenue.
func MaxAmount(t Tier, revenue float64) float64 {
	return revenue * Multiplier(t)
}
