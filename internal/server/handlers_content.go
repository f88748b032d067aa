package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/i18n"
)

// TestimonialResponse is a review with the quote in the requested language.
type TestimonialResponse struct {
	ID         uuid.UUID     `json:"id"`
	AuthorName string        `json:"author_name"`
	Quote      string        `json:"quote"`
	Language   i18n.Language `json:"language"`
	Rating     int           `json:"rating"`
}

func localizeTestimonial(t db.Testimonial, lang i18n.Language) TestimonialResponse {
	resp := TestimonialResponse{
		ID:         t.ID,
		AuthorName: t.AuthorName,
		Quote:      t.QuoteEN,
		Language:   i18n.English,
		Rating:     t.Rating,
	}
	if lang == i18n.Spanish && t.QuoteES != nil && *t.QuoteES != "" {
		resp.Quote = *t.QuoteES
		resp.Language = i18n.Spanish
	}
	return resp
}

// handleListTestimonials returns reviews, newest first, localized.
func (s *Server) handleListTestimonials(w http.ResponseWriter, r *http.Request) {
	testimonials, err := s.store.ListTestimonials(r.Context())
	if err != nil {
		s.failResponse(w, "failed to list testimonials", err)
		return
	}

	lang := s.language(r)
	out := make([]TestimonialResponse, 0, len(testimonials))
	for _, t := range testimonials {
		out = append(out, localizeTestimonial(t, lang))
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleTranslations returns the full UI string table for a language.
func (s *Server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	lang, ok := i18n.Parse(r.PathValue("lang"))
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "unsupported language")
		return
	}
	w.Header().Set("Content-Language", string(lang))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	s.jsonResponse(w, http.StatusOK, s.i18n.Table(lang))
}
