package http

import (
	"context"
	"net/http"
	"time"

	"salestats/internal/amqp"
	"salestats/internal/log"
	"salestats/internal/middleware/trace"
)

type initializeResponse struct {
	Message       string `json:"message"`
	RecordsLoaded int    `json:"recordsLoaded"`
}

type queuedResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	p := parseListParams(r)
	page, err := s.queries.ListTransactions(r.Context(), p.Month, p.Search, p.Page)
	if err != nil {
		writeError(w, r, err, "Failed to fetch transactions")
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	summary, err := s.queries.Summary(r.Context(), parseMonth(r))
	if err != nil {
		writeError(w, r, err, "Failed to fetch statistics")
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

func (s *Server) handleBarChart(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.queries.Histogram(r.Context(), parseMonth(r))
	if err != nil {
		writeError(w, r, err, "Failed to fetch bar chart data")
		return
	}
	writeJSON(w, r, http.StatusOK, buckets)
}

func (s *Server) handlePieChart(w http.ResponseWriter, r *http.Request) {
	counts, err := s.queries.CategoryCounts(r.Context(), parseMonth(r))
	if err != nil {
		writeError(w, r, err, "Failed to fetch pie chart data")
		return
	}
	writeJSON(w, r, http.StatusOK, counts)
}

// handleInitialize replaces the catalog with the seed data. With async=true
// and a queue configured the load is handed to the worker instead.
func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	if parseAsync(r) && s.publisher != nil {
		requestID := trace.GetRequestID(ctx)
		if requestID == "" {
			requestID = trace.GenerateRequestID()
		}
		if err := s.publisher.PublishSeedRequest(ctx, amqp.NewSeedRequestMessage(requestID)); err != nil {
			logger.ErrorContext(ctx, "Failed to queue seed request", log.FieldError, err.Error())
			writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: "Failed to queue seed request."})
			return
		}
		logger.InfoContext(ctx, "Seed request queued", log.FieldOperation, log.OpLoad)
		writeJSON(w, r, http.StatusAccepted, queuedResponse{
			Message:   "Seed request queued.",
			RequestID: requestID,
		})
		return
	}

	result, err := s.loader.Load(ctx)
	if err != nil {
		writeError(w, r, err, "Failed to initialize database.")
		return
	}
	writeJSON(w, r, http.StatusOK, initializeResponse{
		Message:       "Database initialized with seed data.",
		RecordsLoaded: result.RecordsLoaded,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady checks that the record store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"store": "ok"}

	if s.pinger == nil {
		checks["store"] = "not_configured"
	} else if err := s.pinger.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.publisher != nil {
		checks["queue"] = "configured"
	}

	writeJSON(w, r, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}
