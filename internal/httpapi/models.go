package httpapi

import (
	"strings"

	"github.com/yourorg/loancheck/internal/audit"
	"github.com/yourorg/loancheck/internal/credit"
)

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	CorrId    string `json:"corrId"`
	Retryable bool   `json:"retryable"`
}

type ValidationError struct {
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	CorrId    string                       `json:"corrId"`
	Retryable bool                         `json:"retryable"`
	Errors    []credit.ValidationErrorItem `json:"errors"`
}

type RateLimitError struct {
	Code              string `json:"code"`
	Message           string `json:"message"`
	CorrId            string `json:"corrId"`
	Retryable         bool   `json:"retryable"`
	RetryAfterSeconds int    `json:"retryAfterSeconds"`
}

// CreditAnalysisRequest is the JSON body of POST /loans/credit-analysis.
// The Portuguese field names of the first API version are still accepted.
type CreditAnalysisRequest struct {
	TaxID           string  `json:"taxId"`
	CompanyName     string  `json:"companyName"`
	RequestedAmount float64 `json:"requestedAmount"`

	CNPJ            string  `json:"cnpj,omitempty"`
	NomeEmpresa     string  `json:"nomeEmpresa,omitempty"`
	ValorSolicitado float64 `json:"valorSolicitado,omitempty"`
}

func (r CreditAnalysisRequest) Application() credit.Application {
	app := credit.Application{
		TaxID:           strings.TrimSpace(r.TaxID),
		CompanyName:     strings.TrimSpace(r.CompanyName),
		RequestedAmount: r.RequestedAmount,
	}
	if app.TaxID == "" {
		app.TaxID = strings.TrimSpace(r.CNPJ)
	}
	if app.CompanyName == "" {
		app.CompanyName = strings.TrimSpace(r.NomeEmpresa)
	}
	if app.RequestedAmount == 0 {
		app.RequestedAmount = r.ValorSolicitado
	}
	return app
}

// ReportLink is returned next to a stored PDF.
type ReportLink struct {
	ReportID string `json:"reportId"`
	URL      string `json:"url"`
}

// AuditTrail is the response of GET /audit/{taxId}.
type AuditTrail struct {
	TaxID   string        `json:"taxId"`
	Entries []audit.Entry `json:"entries"`
	Valid   bool          `json:"valid"`
	Problem string        `json:"problem,omitempty"`
}

type Health struct {
	Status string `json:"status"`
}
