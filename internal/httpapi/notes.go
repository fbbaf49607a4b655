package httpapi

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/yourorg/loancheck/internal/credit"
	"github.com/yourorg/loancheck/internal/logging"
	"github.com/yourorg/loancheck/internal/notes"
)

// MinLoanAmount is the smallest loan a document can be reconciled against.
const MinLoanAmount = 1000.0

const multipartMemory = 8 << 20

var (
	fileFields       = []string{"file", "arquivo"}
	taxIDFields      = []string{"taxId", "cnpj"}
	loanAmountFields = []string{"loanAmount", "valorEmprestimo"}
)

// upload is a parsed multipart reconciliation request.
type upload struct {
	taxID      string
	loanAmount float64
	format     string
	file       openapi_types.File
}

// reconciled carries a finished reconciliation to the response writers.
type reconciled struct {
	upload upload
	result notes.ReconciliationResult
	log    *slog.Logger
}

// ReconcileNotes matches POST /loans/notes. The format comes from the "format"
// field or, failing that, from the file extension.
func (s *Server) ReconcileNotes(w http.ResponseWriter, r *http.Request) {
	if rec, ok := s.reconcile(w, r, ""); ok {
		writeJSON(w, http.StatusOK, correlationID(r.Context()), rec.result, nil)
	}
}

// ReconcileTree matches POST /loans/notes/xml.
func (s *Server) ReconcileTree(w http.ResponseWriter, r *http.Request) {
	if rec, ok := s.reconcile(w, r, notes.FormatGenericTree); ok {
		writeJSON(w, http.StatusOK, correlationID(r.Context()), rec.result, nil)
	}
}

// ReconcileFixedWidth matches POST /loans/notes/cnab.
func (s *Server) ReconcileFixedWidth(w http.ResponseWriter, r *http.Request) {
	if rec, ok := s.reconcile(w, r, notes.FormatFixedWidth); ok {
		writeJSON(w, http.StatusOK, correlationID(r.Context()), rec.result, nil)
	}
}

// reconcile parses the upload and runs the reconciler. On failure it has
// already written the error response.
func (s *Server) reconcile(w http.ResponseWriter, r *http.Request, format notes.Format) (reconciled, bool) {
	corrID := correlationID(r.Context())
	up, ok := s.readUpload(w, r)
	if !ok {
		return reconciled{}, false
	}
	log := logging.WithCorrelation(s.logger, corrID, up.taxID)

	if format == "" {
		var err error
		if format, err = resolveFormat(up.format, up.file.Filename(), s.deps.FixedWidthExtensions); err != nil {
			writeReconcileError(w, log, corrID, err)
			return reconciled{}, false
		}
	}
	content, err := up.file.Bytes()
	if err != nil {
		log.Error("read upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, corrID, "INTERNAL_ERROR", "could not read the uploaded file", true)
		return reconciled{}, false
	}
	log.Info("reconciliation requested", "filename", up.file.Filename(), "size", up.file.FileSize(), "format", format)

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()
	result, err := s.deps.Reconciler.Reconcile(ctx, notes.ReconciliationRequest{
		TaxID:      up.taxID,
		LoanAmount: up.loanAmount,
		Content:    content,
		Format:     format,
		Filename:   up.file.Filename(),
	})
	if err != nil {
		writeReconcileError(w, log, corrID, err)
		return reconciled{}, false
	}
	s.appendAudit(r.Context(), log, corrID, up.taxID, "notes.reconcile", outcome(result.Approved))
	return reconciled{upload: up, result: result, log: log}, true
}

func writeReconcileError(w http.ResponseWriter, log *slog.Logger, corrID string, err error) {
	var (
		inErr *notes.InputError
		pErr  *notes.ParseError
	)
	switch {
	case errors.As(err, &inErr):
		writeValidation(w, corrID, "VALIDATION_ERROR", "invalid reconciliation request", []credit.ValidationErrorItem{
			{Code: "NOTES-REQ-003", Path: inErr.Field, Message: inErr.Message},
		})
	case errors.Is(err, notes.ErrUnknownFormat):
		writeValidation(w, corrID, "VALIDATION_ERROR", "invalid reconciliation request", []credit.ValidationErrorItem{
			{Code: "NOTES-REQ-004", Path: "format", Message: "unsupported document format"},
		})
	case errors.As(err, &pErr):
		writeError(w, http.StatusBadRequest, corrID, "INVALID_FILE", pErr.Error(), false)
	default:
		log.Error("reconciliation failed", "error", err)
		writeProcessingError(w, corrID, err)
	}
}

// readUpload enforces the upload size limit and validates the form fields.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	corrID := correlationID(r.Context())
	if s.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, corrID, "PAYLOAD_TOO_LARGE", "uploaded file exceeds the size limit", false)
			return upload{}, false
		}
		writeValidation(w, corrID, "BAD_MULTIPART", "expected a multipart/form-data body", []credit.ValidationErrorItem{
			{Code: "BAD_MULTIPART", Path: "body", Message: err.Error()},
		})
		return upload{}, false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var (
		up   upload
		errs = make([]credit.ValidationErrorItem, 0)
	)
	found := false
	for _, name := range fileFields {
		if fhs := r.MultipartForm.File[name]; len(fhs) > 0 {
			up.file.InitFromMultipart(fhs[0])
			found = true
			break
		}
	}
	if !found {
		errs = append(errs, credit.ValidationErrorItem{Code: "NOTES-REQ-001", Path: "file", Message: "file is required"})
	}

	up.taxID = strings.TrimSpace(formValue(r, taxIDFields))
	if up.taxID == "" {
		errs = append(errs, credit.ValidationErrorItem{Code: "NOTES-REQ-002", Path: "taxId", Message: "taxId is required"})
	}

	raw := strings.TrimSpace(formValue(r, loanAmountFields))
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount < MinLoanAmount {
		errs = append(errs, credit.ValidationErrorItem{
			Code:    "NOTES-REQ-003",
			Path:    "loanAmount",
			Message: "loanAmount must be a number of at least 1000",
		})
	}
	up.loanAmount = amount
	up.format = strings.TrimSpace(r.FormValue("format"))

	if len(errs) > 0 {
		writeValidation(w, corrID, "VALIDATION_ERROR", "invalid reconciliation request", errs)
		return upload{}, false
	}
	// The multipart temp files are removed on return, so buffer the content now.
	content, err := up.file.Bytes()
	if err != nil {
		writeError(w, http.StatusBadRequest, corrID, "BAD_UPLOAD", "could not read the uploaded file", false)
		return upload{}, false
	}
	var buffered openapi_types.File
	buffered.InitFromBytes(content, up.file.Filename())
	up.file = buffered
	return up, true
}

func formValue(r *http.Request, names []string) string {
	for _, n := range names {
		if v := r.FormValue(n); v != "" {
			return v
		}
	}
	return ""
}

// resolveFormat honours an explicit format field before falling back to the
// file extension.
func resolveFormat(explicit, filename string, fixedWidthExts []string) (notes.Format, error) {
	if explicit == "" {
		return notes.FormatForFilename(filename, fixedWidthExts), nil
	}
	return notes.ParseFormat(explicit)
}
