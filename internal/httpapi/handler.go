package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bjaus/report"
	"github.com/bjaus/report/internal/metrics"
	"github.com/bjaus/report/internal/store"
)

// RowSource supplies report rows. *store.Products satisfies it.
type RowSource interface {
	ReportRows(ctx context.Context, f store.Filter) ([]report.Row, error)
	Ping(ctx context.Context) error
}

// Selector resolves a configured format name to a strategy.
// *report.Factory satisfies it.
type Selector interface {
	Select(configured string) (report.Generator, error)
}

// Handler serves report downloads.
type Handler struct {
	rows    RowSource
	reports Selector
	format  string
	metrics *metrics.Reports
	log     *zap.Logger
}

// NewHandler returns a handler that renders reports in format unless a
// request overrides it with ?format=.
func NewHandler(rows RowSource, reports Selector, format string, m *metrics.Reports, log *zap.Logger) *Handler {
	return &Handler{rows: rows, reports: reports, format: format, metrics: m, log: log}
}

const maxLimit = 10000

// Driver errors stay in the log; clients get these instead.
const (
	msgRowSourceFailed = "product rows could not be read"
	msgNotReady        = "product database is unreachable"
)

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.rows.Ping(ctx); err != nil {
		h.log.Warn("row source not ready", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "not_ready", msgNotReady, middleware.GetReqID(r.Context()))
		return
	}
	writeSuccess(w, http.StatusOK, "ready")
}

func (h *Handler) productReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	q := r.URL.Query()
	configured := h.format
	if v := q.Get("format"); v != "" {
		configured = v
	}
	label := formatLabel(configured)

	filter, err := parseFilter(q.Get("seller_id"), q.Get("category"), q.Get("limit"), q.Get("include_inactive"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), reqID)
		return
	}

	// Selection happens before any row fetch.
	gen, err := h.reports.Select(configured)
	if err != nil {
		h.fail(w, label, metrics.ReasonUnavailable, http.StatusInternalServerError, "report_unavailable", err.Error(), err, reqID)
		return
	}

	start := time.Now()
	rows, err := h.rows.ReportRows(r.Context(), filter)
	if err != nil {
		h.fail(w, label, metrics.ReasonRowSource, http.StatusBadGateway, "row_source_failed", msgRowSourceFailed, err, reqID)
		return
	}
	data, err := gen.Generate(rows)
	if err != nil {
		h.fail(w, label, metrics.ReasonEncoding, http.StatusInternalServerError, "report_encoding_failed", err.Error(), err, reqID)
		return
	}
	elapsed := time.Since(start)
	h.metrics.Generated(label, len(data), elapsed)
	h.log.Info("report generated",
		zap.String("format", label),
		zap.Int("rows", len(rows)),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", elapsed),
		zap.String("request_id", reqID),
	)

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", gen.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) fail(w http.ResponseWriter, format, reason string, status int, code, message string, err error, reqID string) {
	h.metrics.Failed(format, reason)
	h.log.Error("report failed",
		zap.String("format", format),
		zap.String("reason", reason),
		zap.Error(err),
		zap.String("request_id", reqID),
	)
	writeError(w, status, code, message, reqID)
}

// formatLabel names the format a configured value resolves to.
func formatLabel(configured string) string {
	f, err := report.ParseFormat(configured)
	if err != nil {
		return report.CSV.String()
	}
	return f.String()
}

func parseFilter(sellerID, category, limit, includeInactive string) (store.Filter, error) {
	f := store.Filter{
		ActiveOnly: true,
		SellerID:   strings.TrimSpace(sellerID),
		Category:   strings.TrimSpace(category),
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return f, errors.New("limit must be a non-negative integer")
		}
		f.Limit = min(n, maxLimit)
	}
	if includeInactive != "" {
		all, err := strconv.ParseBool(includeInactive)
		if err != nil {
			return f, errors.New("include_inactive must be a boolean")
		}
		f.ActiveOnly = !all
	}
	return f, nil
}
