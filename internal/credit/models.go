package credit

import "github.com/yourorg/loancheck/internal/signals"

// Application is one credit analysis request.
type Application struct {
	TaxID           string  `json:"taxId"`
	CompanyName     string  `json:"companyName"`
	RequestedAmount float64 `json:"requestedAmount"`
}

type Decision struct {
	Approved          bool                         `json:"approved"`
	Tier              Tier                         `json:"tier"`
	RejectionReason   string                       `json:"rejectionReason,omitempty"`
	Bureau            signals.BureauSignal         `json:"bureau"`
	Revenue           signals.RevenueSignal        `json:"revenue"`
	PaymentHistory    signals.PaymentHistorySignal `json:"paymentHistory"`
	MaxApprovedAmount *float64                     `json:"maxApprovedAmount,omitempty"`
	Recommendations   []string                     `json:"recommendations"`
}

type ValidationErrorItem struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}
