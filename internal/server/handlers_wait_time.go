package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/types"
	"go.uber.org/zap"
)

// defaultWaitMinutes is reported before staff have posted an estimate.
const defaultWaitMinutes = 15

// WaitTimeResponse is the public wait estimate.
type WaitTimeResponse struct {
	EstimatedWaitMinutes int       `json:"estimated_wait_minutes"`
	UpdatedAt            time.Time `json:"updated_at,omitempty"`
}

func waitTimeResponse(status *db.ClinicStatus) WaitTimeResponse {
	if status == nil {
		return WaitTimeResponse{EstimatedWaitMinutes: defaultWaitMinutes}
	}
	return WaitTimeResponse{
		EstimatedWaitMinutes: status.EstimatedWaitMinutes,
		UpdatedAt:            status.UpdatedAt,
	}
}

// handleGetWaitTime returns the current estimated wait.
func (s *Server) handleGetWaitTime(w http.ResponseWriter, r *http.Request) {
	status, err := s.store.GetClinicStatus(r.Context())
	if err != nil {
		s.failResponse(w, "failed to get clinic status", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, waitTimeResponse(status))
}

// handleUpdateWaitTime posts a new estimate and notifies stream listeners.
func (s *Server) handleUpdateWaitTime(w http.ResponseWriter, r *http.Request) {
	var req types.WaitTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	status, err := s.store.UpdateWaitTime(r.Context(), req.EstimatedWaitMinutes)
	if err != nil {
		s.failResponse(w, "failed to update wait time", err)
		return
	}

	s.statusFeed.Publish(*status)
	s.logger.Info("wait time updated", zap.Int("minutes", status.EstimatedWaitMinutes))
	s.jsonResponse(w, http.StatusOK, waitTimeResponse(status))
}

// handleWaitTimeStream pushes the current estimate and then every change.
func (s *Server) handleWaitTimeStream(w http.ResponseWriter, r *http.Request) {
	updates, unsubscribe := s.statusFeed.Channel(4)
	defer unsubscribe()

	status, err := s.store.GetClinicStatus(r.Context())
	if err != nil {
		s.failResponse(w, "failed to get clinic status", err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sse.WriteEvent("wait_time", waitTimeResponse(status)); err != nil {
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := sse.WriteEvent("wait_time", waitTimeResponse(&st)); err != nil {
				return
			}
		case <-ticker.C:
			if err := sse.WritePing(); err != nil {
				return
			}
		}
	}
}
