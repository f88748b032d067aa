package server

import (
	"encoding/json"
	"net/http"

	"github.com/optimumcare/clinic-site/internal/types"
	"go.uber.org/zap"
)

// handleIVCatalog returns the treatments and add-ons offered in the builder.
func (s *Server) handleIVCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := s.catalog.Get(r.Context())
	if err != nil {
		s.failResponse(w, "failed to load IV catalog", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cat)
}

// handleIVQuote replays builder actions and returns the resulting selection.
func (s *Server) handleIVQuote(w http.ResponseWriter, r *http.Request) {
	var req types.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	cat, err := s.catalog.Get(r.Context())
	if err != nil {
		s.failResponse(w, "failed to load IV catalog", err)
		return
	}

	b, err := cat.Replay(req.Actions)
	if err != nil {
		s.failResponse(w, "failed to replay IV actions", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, b.Snapshot())
}

// handleRefreshCatalog drops the cached catalog after prices change.
func (s *Server) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	s.catalog.Invalidate()
	cat, err := s.catalog.Get(r.Context())
	if err != nil {
		s.failResponse(w, "failed to reload IV catalog", err)
		return
	}
	s.logger.Info("IV catalog reloaded",
		zap.Int("treatments", len(cat.Treatments)),
		zap.Int("addons", len(cat.Addons)),
	)
	s.jsonResponse(w, http.StatusOK, cat)
}
