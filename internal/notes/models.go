package notes

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Status string

const (
	StatusValid   Status = "VALID"
	StatusInvalid Status = "INVALID"
)

// FiscalNote is one extracted note after the authenticity check.
type FiscalNote struct {
	Key                string   `json:"key"`
	Value              float64  `json:"value"`
	Status             Status   `json:"status"`
	Tags               []string `json:"tags"`
	InvalidationReason string   `json:"invalidationReason,omitempty"`
}

// Candidate is a (key, value) pair pulled out of a document, not yet validated.
type Candidate struct {
	Key   string
	Value float64
}

// Format selects the extractor for a document.
type Format string

const (
	FormatGenericTree Format = "GENERIC_TREE"
	FormatFixedWidth  Format = "FIXED_WIDTH"
)

// FormatForFilename returns FIXED_WIDTH when the file extension is one of
// fixedWidthExts (case-insensitive) and GENERIC_TREE otherwise.
func FormatForFilename(name string, fixedWidthExts []string) Format {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return FormatGenericTree
	}
	for _, e := range fixedWidthExts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.EqualFold(ext, e) {
			return FormatFixedWidth
		}
	}
	return FormatGenericTree
}

// ParseFormat accepts the format names plus the XML and CNAB aliases used by
// the first API version.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "XML", string(FormatGenericTree):
		return FormatGenericTree, nil
	case "CNAB", string(FormatFixedWidth):
		return FormatFixedWidth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

type ReconciliationRequest struct {
	TaxID      string
	LoanAmount float64
	Content    []byte
	Format     Format
	// Filename picks the tree syntax for GENERIC_TREE documents. Optional.
	Filename string
}

type ReconciliationResult struct {
	NotesSent       int          `json:"notesSent"`
	ValidNotes      int          `json:"validNotes"`
	InvalidNotes    int          `json:"invalidNotes"`
	ValidTotal      float64      `json:"validTotal"`
	LoanAmount      float64      `json:"loanAmount"`
	CoveragePercent float64      `json:"coveragePercent"`
	WithinTolerance bool         `json:"withinTolerance"`
	Approved        bool         `json:"approved"`
	Notes           []FiscalNote `json:"notes"`
	Message         string       `json:"message"`
}
