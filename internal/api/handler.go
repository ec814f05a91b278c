// Package api serves reports over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/auth"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/domain"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/export"
	"github.com/dhruvtx07/Movie-Booking-System-sub000/internal/report"
)

// Handler exposes the report service.
type Handler struct {
	service *report.Service
	logger  *zap.Logger
}

func NewHandler(service *report.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) request(r *http.Request) report.Request {
	tenantID, _ := auth.TenantIDFromContext(r.Context())
	return report.Request{
		TenantID: tenantID,
		Kind:     domain.ReportKind(chi.URLParam(r, "kind")),
		Values:   r.URL.Query(),
	}
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Build(r.Context(), h.request(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type explainedQuery struct {
	Name    string         `json:"name"`
	SQL     string         `json:"sql"`
	Args    map[string]any `json:"args"`
	Aliases []string       `json:"aliases"`
}

func (h *Handler) explain(w http.ResponseWriter, r *http.Request) {
	fam, err := h.service.Explain(h.request(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	queries := fam.Queries()
	out := make([]explainedQuery, 0, len(queries))
	for _, q := range queries {
		aliases := make([]string, len(q.Aliases))
		for i, a := range q.Aliases {
			aliases[i] = string(a)
		}
		out = append(out, explainedQuery{Name: q.Name, SQL: q.SQL, Args: q.Args, Aliases: aliases})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", export.ContentTypeXLSX, export.WriteXLSX)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", export.ContentTypeCSV, export.WriteCSV)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(w io.Writer, rep *domain.Report) error) {
	req := h.request(r)
	state, _, err := h.service.Normalize(req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rep, err := h.service.Collect(r.Context(), req.Kind, state)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(rep, ext)+`"`)
	if err := write(w, rep); err != nil {
		h.logger.Error("report export failed",
			zap.String("kind", string(req.Kind)),
			zap.String("format", ext),
			zap.Error(err),
		)
	}
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps report failures to status codes. Query failures keep their cause out of
// the response.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "report failed"
	switch {
	case errors.Is(err, domain.ErrMissingTenant):
		status, message = http.StatusUnauthorized, "tenant required"
	case errors.Is(err, domain.ErrInvalidReport):
		status, message = http.StatusNotFound, "unknown report"
	case errors.Is(err, domain.ErrQueryFailed):
		var reportErr *domain.ReportError
		if errors.As(err, &reportErr) {
			message = reportErr.Message
		}
	}

	fields := []zap.Field{zap.String("path", r.URL.Path), zap.Int("status", status)}
	if status >= http.StatusInternalServerError {
		h.logger.Error("report request failed", append(fields, zap.Error(err))...)
	} else {
		h.logger.Debug("report request rejected", append(fields, zap.Error(err))...)
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
