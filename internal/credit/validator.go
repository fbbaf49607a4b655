package credit

import (
	"fmt"
	"math"
	"strings"
)

// MinRequestedAmount is the smallest loan the API accepts.
const MinRequestedAmount = 1000.0

const maxCompanyName = 200

func ValidateApplication(app Application) []ValidationErrorItem {
	errs := make([]ValidationErrorItem, 0)
	if strings.TrimSpace(app.TaxID) == "" {
		errs = append(errs, ValidationErrorItem{Code: "CREDIT-REQ-001", Path: "taxId", Message: "taxId is required"})
	}
	if strings.TrimSpace(app.CompanyName) == "" {
		errs = append(errs, ValidationErrorItem{Code: "CREDIT-REQ-002", Path: "companyName", Message: "companyName is required"})
	} else if len(app.CompanyName) > maxCompanyName {
		errs = append(errs, ValidationErrorItem{Code: "CREDIT-REQ-003", Path: "companyName", Message: "companyName too long"})
	}
	if math.IsNaN(app.RequestedAmount) || math.IsInf(app.RequestedAmount, 0) || app.RequestedAmount < MinRequestedAmount {
		errs = append(errs, ValidationErrorItem{
			Code:    "CREDIT-REQ-004",
			Path:    "requestedAmount",
			Message: fmt.Sprintf("requestedAmount must be at least %.0f", MinRequestedAmount),
		})
	}
	return errs
}
