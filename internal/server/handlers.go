package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// CollectResponse is the ingestion trigger payload.
type CollectResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	TotalSignalsCreated int    `json:"totalSignalsCreated"`
}

// DigestResponse is the digest trigger payload.
type DigestResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	EmailsSent int    `json:"emailsSent"`
}

// ErrorResponse is the error payload for hard failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "degraded",
			Time:   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleCollectSignals(w http.ResponseWriter, r *http.Request) {
	report, err := s.collector.Run(r.Context())
	if err != nil {
		s.log.Error("Signal collection failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, CollectResponse{
		Success:             true,
		Message:             fmt.Sprintf("Signal collection completed. Created %d new signals.", report.SignalsCreated),
		TotalSignalsCreated: report.SignalsCreated,
	})
}

func (s *Server) handleSendDigest(w http.ResponseWriter, r *http.Request) {
	report, err := s.batcher.Run(r.Context())
	if err != nil {
		s.log.Error("Email digest run failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, DigestResponse{
		Success:    true,
		Message:    fmt.Sprintf("Email digest process completed. Sent %d emails.", report.EmailsSent),
		EmailsSent: report.EmailsSent,
	})
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("Failed to encode response", "error", err)
	}
}

// respondError writes a JSON error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
