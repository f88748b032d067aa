package server

import (
	"encoding/json"
	"net/http"

	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/types"
	"go.uber.org/zap"
)

// handleListArticles lists published articles, optionally filtered by ?category=.
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	switch category {
	case "", db.ArticleCategoryMen, db.ArticleCategoryWomen, db.ArticleCategoryFamily:
	default:
		s.errorResponse(w, http.StatusBadRequest, "category must be one of men, women, family")
		return
	}

	articles, err := s.store.ListPublishedArticles(r.Context(), category)
	if err != nil {
		s.failResponse(w, "failed to list articles", err)
		return
	}
	if articles == nil {
		articles = []db.ArticleSummary{}
	}
	s.jsonResponse(w, http.StatusOK, articles)
}

// handleGetArticle returns one published article by slug.
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	article, err := s.store.GetPublishedArticle(r.Context(), slug)
	if err != nil {
		s.failResponse(w, "failed to get article", err)
		return
	}
	if article == nil {
		s.failResponse(w, "", &ErrNotFound{Resource: "article", Key: slug})
		return
	}
	s.jsonResponse(w, http.StatusOK, article)
}

// handleCreateArticle publishes a Health Hub article.
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req types.ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	article, err := s.store.CreateArticle(r.Context(), &db.ArticleInput{
		Title:     req.Title,
		Slug:      req.Slug,
		Category:  req.Category,
		Excerpt:   req.Excerpt,
		Content:   req.Content,
		ImageURL:  req.ImageURL,
		Published: true,
	})
	if err != nil {
		s.failResponse(w, "failed to create article", err)
		return
	}

	s.logger.Info("article published", zap.String("slug", article.Slug))
	s.jsonResponse(w, http.StatusCreated, article)
}
