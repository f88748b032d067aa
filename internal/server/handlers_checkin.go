package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/i18n"
	"github.com/optimumcare/clinic-site/internal/ivbuilder"
	"github.com/optimumcare/clinic-site/internal/queue"
	"github.com/optimumcare/clinic-site/internal/types"
	"go.uber.org/zap"
)

// CheckInResponse is returned to the patient after a successful check-in.
type CheckInResponse struct {
	ID          uuid.UUID            `json:"id"`
	Message     string               `json:"message"`
	IVSelection *ivbuilder.Selection `json:"iv_selection,omitempty"`
}

// handleCheckIn adds a walk-in patient to the queue.
func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req types.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Normalize()

	lang, ok := i18n.Parse(req.LanguagePref)
	if !ok {
		lang = s.language(r)
	}

	if req.IVSelection != nil && req.IVSelection.BaseID == "" {
		s.errorResponse(w, http.StatusBadRequest, s.i18n.T(lang, "checkIn.ivSelectionRequired"))
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	input := &db.PatientInput{
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
		SymptomCategory: req.SymptomCategory,
		LanguagePref:    string(lang),
	}

	if req.IVSelection != nil {
		cat, err := s.catalog.Get(r.Context())
		if err != nil {
			s.failResponse(w, "failed to load IV catalog", err)
			return
		}
		sel, err := cat.Price(req.IVSelection.BaseID, req.IVSelection.AddonIDs)
		if err != nil {
			s.failResponse(w, "failed to price IV selection", err)
			return
		}
		input.IVSelection = &sel
	}

	patient, err := s.store.CreatePatient(r.Context(), input)
	if err != nil {
		s.logger.Error("check-in failed", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, s.i18n.T(lang, "checkIn.errorToast"))
		return
	}

	s.queueFeed.Publish(queue.Event{Type: queue.EventInsert, Patient: *patient})
	s.logger.Info("patient checked in",
		zap.String("patient_id", patient.ID.String()),
		zap.String("symptom_category", patient.SymptomCategory),
		zap.Bool("iv_selection", patient.IVSelection != nil),
	)

	s.jsonResponse(w, http.StatusCreated, CheckInResponse{
		ID:          patient.ID,
		Message:     s.i18n.T(lang, "checkIn.successToast"),
		IVSelection: patient.IVSelection,
	})
}
