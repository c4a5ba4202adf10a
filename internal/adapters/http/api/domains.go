package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	service "github.com/okian/rankscope/internal/app"
	"github.com/okian/rankscope/internal/domain/model"
	"github.com/okian/rankscope/pkg/logger"
)

// DomainsDependencies defines the interface for managing stored domains.
type DomainsDependencies interface {
	Domains(ctx context.Context) ([]model.DomainSummary, error)
	Upload(ctx context.Context, req service.UploadRequest) (service.UploadResult, error)
	Delete(ctx context.Context, domain string) error
}

// DomainsHandler lists, uploads and deletes domains.
type DomainsHandler struct {
	deps           DomainsDependencies
	maxUploadBytes int64
	log            logger.Logger
}

// NewDomainsHandler creates a new domains handler.
func NewDomainsHandler(deps DomainsDependencies, maxUploadBytes int64, log logger.Logger) *DomainsHandler {
	return &DomainsHandler{deps: deps, maxUploadBytes: maxUploadBytes, log: log}
}

// HandleDomains handles GET and POST /api/domains.
func (h *DomainsHandler) HandleDomains(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.upload(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *DomainsHandler) list(w http.ResponseWriter, r *http.Request) {
	domains, err := h.deps.Domains(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, domains)
}

// upload accepts multipart/form-data with a "file" part and an optional
// "domain" field overriding the name derived from the filename.
func (h *DomainsHandler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: upload exceeds %d bytes", ErrBadRequest, h.maxUploadBytes))
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrMissingFile)
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.deps.Upload(r.Context(), service.UploadRequest{
		Reader:   file,
		Filename: header.Filename,
		Size:     header.Size,
		Domain:   r.FormValue("domain"),
	})
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.log.Error(r.Context(), "upload failed", logger.String("filename", header.Filename), logger.Error(err))
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// HandleDeleteDomain handles DELETE /api/domains/{name}.
func (h *DomainsHandler) HandleDeleteDomain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/api/domains/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusBadRequest, ErrMissingDomain)
		return
	}
	if err := h.deps.Delete(r.Context(), name); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
