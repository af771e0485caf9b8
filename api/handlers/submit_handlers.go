package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"cyberguard-portal/core/store"
	"cyberguard-portal/core/submission"
	"cyberguard-portal/core/utils"
)

// SubmitHandler serves the public report endpoint: POST submits a
// report, GET exposes the submission stats and the connection test,
// everything else is rejected.
type SubmitHandler struct {
	svc      *submission.Service
	reports  store.ReportsStore
	db       *store.DB
	clientIP func(*http.Request) string
	logger   *utils.Logger
}

func NewSubmitHandler(svc *submission.Service, reports store.ReportsStore, db *store.DB,
	clientIP func(*http.Request) string, logger *utils.Logger) *SubmitHandler {
	return &SubmitHandler{svc: svc, reports: reports, db: db, clientIP: clientIP, logger: logger}
}

const submitPayloadMaxBytes = 256 * 1024

func (h *SubmitHandler) Serve(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		q := r.URL.Query()
		switch {
		case q.Has("stats"):
			h.handleStats(w, r)
		case q.Has("test"):
			h.handleConnectionTest(w, r)
		default:
			h.methodNotAllowed(w, r)
		}
	default:
		h.methodNotAllowed(w, r)
	}
}

func (h *SubmitHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := parseSubmitRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "request body could not be parsed")
		return
	}

	result, err := h.svc.Submit(r.Context(), req, h.clientIP(r), r.UserAgent())
	if err != nil {
		h.writeSubmitError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Report submitted successfully",
		"report_number": result.ReportNumber,
		"report_id":     result.ReportID,
		"timestamp":     result.SubmittedAt.Format("2006-01-02 15:04:05"),
	})
}

func (h *SubmitHandler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *submission.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", vErr.Error())
		return
	}
	var rlErr *submission.RateLimitError
	if errors.As(err, &rlErr) {
		writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
			"too many reports from this address, try again later")
		return
	}
	var connErr *store.ConnectionError
	if errors.As(err, &connErr) {
		h.logger.Errorf("submit: database unavailable: %v", err)
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "service temporarily unavailable")
		return
	}
	var subErr *submission.SubmissionError
	if errors.As(err, &subErr) {
		h.logger.Errorf("submit: %v", err)
		msg := "failed to submit report"
		var pErr *submission.PersistenceError
		if errors.As(err, &pErr) {
			msg = pErr.Op
		}
		writeError(w, http.StatusBadRequest, "SUBMISSION_FAILED", msg)
		return
	}
	h.logger.Errorf("submit: unexpected error: %v", err)
	writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "internal server error")
}

func (h *SubmitHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.SubmissionStats(r.Context(), time.Now())
	if err != nil {
		h.logger.Errorf("submit: stats query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

func (h *SubmitHandler) handleConnectionTest(w http.ResponseWriter, r *http.Request) {
	health := h.db.Health(r.Context())
	status := http.StatusOK
	if health["status"] != "healthy" {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{
		"success":  health["status"] == "healthy",
		"database": health,
	})
}

func (h *SubmitHandler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST")
	writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
		"success":         false,
		"error_code":      "METHOD_NOT_ALLOWED",
		"message":         "method not allowed",
		"allowed_methods": []string{http.MethodGet, http.MethodPost},
		"current_method":  r.Method,
	})
}

// parseSubmitRequest accepts either a JSON document or a classic
// form post. Numeric JSON values are accepted for the coordinate and
// loss fields since browsers send both representations.
func parseSubmitRequest(r *http.Request) (*submission.Request, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, submitPayloadMaxBytes)

	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.Contains(ct, "application/json") {
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		var payload map[string]any
		if err := dec.Decode(&payload); err != nil {
			return nil, err
		}
		return &submission.Request{
			ReporterName:  stringField(payload, "reporter_name"),
			ContactInfo:   stringField(payload, "contact_info"),
			CrimeType:     stringField(payload, "crime_type"),
			Description:   stringField(payload, "description"),
			Latitude:      stringField(payload, "latitude"),
			Longitude:     stringField(payload, "longitude"),
			Address:       stringField(payload, "address"),
			EstimatedLoss: stringField(payload, "estimated_loss"),
		}, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &submission.Request{
		ReporterName:  r.PostFormValue("reporter_name"),
		ContactInfo:   r.PostFormValue("contact_info"),
		CrimeType:     r.PostFormValue("crime_type"),
		Description:   r.PostFormValue("description"),
		Latitude:      r.PostFormValue("latitude"),
		Longitude:     r.PostFormValue("longitude"),
		Address:       r.PostFormValue("address"),
		EstimatedLoss: r.PostFormValue("estimated_loss"),
	}, nil
}

func stringField(payload map[string]any, key string) string {
	switch v := payload[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"success":    false,
		"error_code": code,
		"message":    message,
		"timestamp":  time.Now().UTC().Format("2006-01-02 15:04:05"),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
