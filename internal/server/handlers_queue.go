package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/queue"
	"go.uber.org/zap"
)

// handleListQueue reloads the waiting list from the store.
func (s *Server) handleListQueue(w http.ResponseWriter, r *http.Request) {
	waiting, err := s.store.ListWaitingPatients(r.Context())
	if err != nil {
		s.failResponse(w, "failed to list queue", err)
		return
	}
	s.board.Reset(waiting)
	s.jsonResponse(w, http.StatusOK, s.board.Patients())
}

// handleMarkSeen removes the patient from the board right away and then
// records the visit. On failure the board is reloaded from the store.
func (s *Server) handleMarkSeen(w http.ResponseWriter, r *http.Request) {
	s.changePatient(w, r, queue.EventUpdate, s.store.MarkPatientSeen)
}

// handleRemovePatient deletes a queue entry, e.g. a patient who left.
func (s *Server) handleRemovePatient(w http.ResponseWriter, r *http.Request) {
	s.changePatient(w, r, queue.EventDelete, s.store.DeletePatient)
}

func (s *Server) changePatient(
	w http.ResponseWriter,
	r *http.Request,
	evType queue.EventType,
	apply func(ctx context.Context, id uuid.UUID) (*db.Patient, error),
) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	s.board.Remove(id)

	patient, err := apply(r.Context(), id)
	if err != nil {
		s.resyncBoard(r)
		s.failResponse(w, "failed to update queue entry", err)
		return
	}
	if patient == nil {
		s.errorResponse(w, http.StatusNotFound, (&ErrNotFound{Resource: "patient", Key: id.String()}).Error())
		return
	}

	s.queueFeed.Publish(queue.Event{Type: evType, Patient: *patient})
	s.jsonResponse(w, http.StatusOK, patient)
}

func (s *Server) resyncBoard(r *http.Request) {
	waiting, err := s.store.ListWaitingPatients(r.Context())
	if err != nil {
		s.logger.Warn("failed to resync queue board", zap.Error(err))
		return
	}
	s.board.Reset(waiting)
}

// handleQueueStream streams queue events to the staff console. The first
// event is a snapshot of the current board.
func (s *Server) handleQueueStream(w http.ResponseWriter, r *http.Request) {
	events, unsubscribe := s.queueFeed.Channel(32)
	defer unsubscribe()

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := sse.WriteEvent("snapshot", s.board.Patients()); err != nil {
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := sse.WriteEvent("queue", ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := sse.WritePing(); err != nil {
				return
			}
		}
	}
}
