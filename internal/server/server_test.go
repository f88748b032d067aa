package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/optimumcare/clinic-site/internal/config"
	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/ivbuilder"
	"github.com/optimumcare/clinic-site/internal/queue"
	"github.com/optimumcare/clinic-site/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

const handlerJWTSecret = "test-secret-for-clinic-site-handlers"

func newTestServer(t *testing.T) (*Server, *mockStore) {
	t.Helper()
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	store := newMockStore()
	s, err := NewWithStore(context.Background(), store, Config{AllowedOrigin: "https://optimumcare.example"},
		&config.JWTConfig{Secret: handlerJWTSecret, ExpirationHours: 1, Issuer: "clinic-site-test"},
		&config.PasswordConfig{BcryptCost: bcrypt.MinCost},
	)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, store
}

// staffToken creates a staff account with the given role and returns a bearer token for it.
func staffToken(t *testing.T, s *Server, role string) string {
	t.Helper()
	user, err := s.staffService.Create(context.Background(), &types.CreateStaffRequest{
		Name:     "Nurse " + role,
		Email:    role + "-" + uuid.NewString()[:8] + "@optimumcare.example",
		Password: "correct-horse",
		Role:     role,
	})
	require.NoError(t, err)
	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, s *Server, method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func validCheckIn() map[string]any {
	return map[string]any{
		"full_name":            "Maria Lopez",
		"phone_number":         "(956) 555-0100",
		"symptom_category":     types.SymptomSickVisit,
		"cash_pay_acknowledge": true,
	}
}

func TestHealth(t *testing.T) {
	s, store := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	store.pingErr = errors.New("connection refused")
	rec = doRequest(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodOptions, "/check-in", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://optimumcare.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestIVCatalog(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/iv/catalog", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cat struct {
		Treatments []ivbuilder.Treatment `json:"treatments"`
		Addons     []ivbuilder.Addon     `json:"addons"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	assert.Len(t, cat.Treatments, 2)
	assert.Len(t, cat.Addons, 2)
}

func TestIVQuote(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name       string
		actions    []map[string]string
		wantStatus int
		wantTotal  float64
		wantAddons int
	}{
		{
			name: "base with two add-ons",
			actions: []map[string]string{
				{"op": "select_base", "id": "myers"},
				{"op": "toggle_addon", "id": "b12"},
				{"op": "toggle_addon", "id": "glutathione"},
			},
			wantStatus: http.StatusOK,
			wantTotal:  185,
			wantAddons: 2,
		},
		{
			name: "toggle twice removes the add-on",
			actions: []map[string]string{
				{"op": "select_base", "id": "myers"},
				{"op": "toggle_addon", "id": "b12"},
				{"op": "toggle_addon", "id": "glutathione"},
				{"op": "toggle_addon", "id": "b12"},
			},
			wantStatus: http.StatusOK,
			wantTotal:  160,
			wantAddons: 1,
		},
		{
			name: "switching base keeps add-ons",
			actions: []map[string]string{
				{"op": "select_base", "id": "myers"},
				{"op": "toggle_addon", "id": "b12"},
				{"op": "select_base", "id": "hydration"},
			},
			wantStatus: http.StatusOK,
			wantTotal:  120,
			wantAddons: 1,
		},
		{
			name: "reset clears everything",
			actions: []map[string]string{
				{"op": "select_base", "id": "myers"},
				{"op": "toggle_addon", "id": "b12"},
				{"op": "reset"},
			},
			wantStatus: http.StatusOK,
			wantTotal:  0,
		},
		{
			name:       "unknown treatment",
			actions:    []map[string]string{{"op": "select_base", "id": "nope"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unsupported op",
			actions:    []map[string]string{{"op": "checkout", "id": "myers"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing id",
			actions:    []map[string]string{{"op": "toggle_addon"}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodPost, "/iv/quote", map[string]any{"actions": tt.actions}, "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			sel := decode[ivbuilder.Selection](t, rec)
			assert.InDelta(t, tt.wantTotal, sel.Total, 0.001)
			assert.Len(t, sel.Addons, tt.wantAddons)
		})
	}
}

func TestIVQuote_InvalidBody(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, http.MethodPost, "/iv/quote", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckIn(t *testing.T) {
	s, store := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/check-in", validCheckIn(), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[CheckInResponse](t, rec)
	assert.Equal(t, "Check-in complete!", resp.Message)
	assert.Nil(t, resp.IVSelection)

	require.Len(t, store.patients, 1)
	assert.Equal(t, "(956) 555-0100", store.patients[0].PhoneNumber)
	assert.Equal(t, "en", store.patients[0].LanguagePref)

	board := s.board.Patients()
	require.Len(t, board, 1)
	assert.Equal(t, resp.ID, board[0].ID)
}

func TestCheckIn_SpanishMessage(t *testing.T) {
	s, store := newTestServer(t)

	body := validCheckIn()
	body["language_pref"] = "es"
	rec := doRequest(t, s, http.MethodPost, "/check-in", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "¡Registro completado!", decode[CheckInResponse](t, rec).Message)
	assert.Equal(t, "es", store.patients[0].LanguagePref)

	rec = doRequest(t, s, http.MethodPost, "/check-in", validCheckIn(), "", "Accept-Language", "es-MX,es;q=0.9")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "¡Registro completado!", decode[CheckInResponse](t, rec).Message)
}

func TestCheckIn_WithIVSelection(t *testing.T) {
	s, store := newTestServer(t)

	body := validCheckIn()
	body["symptom_category"] = types.SymptomIVWellness
	body["iv_selection"] = map[string]any{
		"base_id":   "myers",
		"addon_ids": []string{"b12", "glutathione"},
	}
	rec := doRequest(t, s, http.MethodPost, "/check-in", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decode[CheckInResponse](t, rec)
	require.NotNil(t, resp.IVSelection)
	require.NotNil(t, resp.IVSelection.Base)
	assert.Equal(t, "myers", resp.IVSelection.Base.ID)
	assert.InDelta(t, 185.0, resp.IVSelection.Total, 0.001)

	require.NotNil(t, store.patients[0].IVSelection)
	assert.InDelta(t, 185.0, store.patients[0].IVSelection.Total, 0.001)
}

func TestCheckIn_Rejected(t *testing.T) {
	s, store := newTestServer(t)

	tests := []struct {
		name        string
		mutate      func(map[string]any)
		lang        string
		wantMessage string
	}{
		{
			name:   "cash pay not acknowledged",
			mutate: func(b map[string]any) { b["cash_pay_acknowledge"] = false },
		},
		{
			name:   "unknown symptom",
			mutate: func(b map[string]any) { b["symptom_category"] = "broken_leg" },
		},
		{
			name:   "short phone",
			mutate: func(b map[string]any) { b["phone_number"] = "555" },
		},
		{
			name: "IV selection without base",
			mutate: func(b map[string]any) {
				b["iv_selection"] = map[string]any{"addon_ids": []string{"b12"}}
			},
			wantMessage: "Please choose a base treatment before booking an IV drip.",
		},
		{
			name: "IV selection without base in Spanish",
			mutate: func(b map[string]any) {
				b["language_pref"] = "es"
				b["iv_selection"] = map[string]any{"base_id": ""}
			},
			wantMessage: "Elige un tratamiento base antes de reservar un suero IV.",
		},
		{
			name: "repeated add-on",
			mutate: func(b map[string]any) {
				b["iv_selection"] = map[string]any{"base_id": "myers", "addon_ids": []string{"b12", "b12"}}
			},
		},
		{
			name: "unknown add-on",
			mutate: func(b map[string]any) {
				b["iv_selection"] = map[string]any{"base_id": "myers", "addon_ids": []string{"ozone"}}
			},
			wantMessage: "unknown addon: ozone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validCheckIn()
			tt.mutate(body)
			rec := doRequest(t, s, http.MethodPost, "/check-in", body, "")
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, decode[map[string]string](t, rec)["error"])
			}
		})
	}
	assert.Empty(t, store.patients)
	assert.Zero(t, s.board.Len())
}

func TestCheckIn_StoreFailureIsLocalized(t *testing.T) {
	s, store := newTestServer(t)
	store.createPatientErr = errors.New("db down")

	body := validCheckIn()
	body["language_pref"] = "es"
	rec := doRequest(t, s, http.MethodPost, "/check-in", body, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "El registro falló. Inténtalo de nuevo o llámanos.", decode[map[string]string](t, rec)["error"])
	assert.Zero(t, s.board.Len())
}

func TestAdminRoutesRequireAuth(t *testing.T) {
	s, _ := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/admin/me"},
		{http.MethodGet, "/admin/queue"},
		{http.MethodPost, "/admin/queue/" + uuid.NewString() + "/seen"},
		{http.MethodDelete, "/admin/queue/" + uuid.NewString()},
		{http.MethodPut, "/admin/wait-time"},
		{http.MethodPost, "/admin/articles"},
		{http.MethodPost, "/admin/catalog/refresh"},
	} {
		rec := doRequest(t, s, route.method, route.path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", route.method, route.path)
	}

	rec := doRequest(t, s, http.MethodGet, "/admin/queue", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOnlyRoutesRejectStaffRole(t *testing.T) {
	s, _ := newTestServer(t)
	token := staffToken(t, s, db.RoleStaff)

	rec := doRequest(t, s, http.MethodPut, "/admin/wait-time", map[string]int{"estimated_wait_minutes": 30}, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/admin/catalog/refresh", nil, token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/admin/queue", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.staffService.Create(context.Background(), &types.CreateStaffRequest{
		Name: "Dr. Patel", Email: "patel@optimumcare.example", Password: "correct-horse", Role: db.RoleAdmin,
	})
	require.NoError(t, err)

	rec := doRequest(t, s, http.MethodPost, "/auth/login",
		map[string]string{"email": "PATEL@optimumcare.example", "password": "correct-horse"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[types.LoginResponse](t, rec)
	require.NotNil(t, login.User)
	assert.Equal(t, db.RoleAdmin, login.User.Role)
	assert.NotEmpty(t, login.Token)

	rec = doRequest(t, s, http.MethodGet, "/admin/me", nil, login.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "patel@optimumcare.example", decode[types.StaffUser](t, rec).Email)

	rec = doRequest(t, s, http.MethodPost, "/auth/login",
		map[string]string{"email": "patel@optimumcare.example", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/auth/login",
		map[string]string{"email": "nobody@optimumcare.example", "password": "correct-horse"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/auth/login", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePassword(t *testing.T) {
	s, _ := newTestServer(t)
	_, err := s.staffService.Create(context.Background(), &types.CreateStaffRequest{
		Name: "Front Desk", Email: "desk@optimumcare.example", Password: "correct-horse", Role: db.RoleStaff,
	})
	require.NoError(t, err)

	login := func(password string) int {
		return doRequest(t, s, http.MethodPost, "/auth/login",
			map[string]string{"email": "desk@optimumcare.example", "password": password}, "").Code
	}
	rec := doRequest(t, s, http.MethodPost, "/auth/login",
		map[string]string{"email": "desk@optimumcare.example", "password": "correct-horse"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[types.LoginResponse](t, rec).Token

	rec = doRequest(t, s, http.MethodPut, "/admin/password",
		map[string]string{"current_password": "wrong-one", "new_password": "battery-staple"}, token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, s, http.MethodPut, "/admin/password",
		map[string]string{"current_password": "correct-horse", "new_password": "battery-staple"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, login("correct-horse"))
	assert.Equal(t, http.StatusOK, login("battery-staple"))
}

func TestQueue(t *testing.T) {
	s, store := newTestServer(t)
	token := staffToken(t, s, db.RoleStaff)

	var ids []uuid.UUID
	for _, name := range []string{"Ana Ruiz", "Ben Cho", "Cruz Diaz"} {
		body := validCheckIn()
		body["full_name"] = name
		rec := doRequest(t, s, http.MethodPost, "/check-in", body, "")
		require.Equal(t, http.StatusCreated, rec.Code)
		ids = append(ids, decode[CheckInResponse](t, rec).ID)
	}

	board := s.board.Patients()
	require.Len(t, board, 3)
	assert.Equal(t, "Cruz Diaz", board[0].FullName, "newest check-in first")

	rec := doRequest(t, s, http.MethodGet, "/admin/queue", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]db.Patient](t, rec), 3)

	rec = doRequest(t, s, http.MethodPost, "/admin/queue/"+ids[0].String()+"/seen", nil, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[db.Patient](t, rec).IsSeen)
	assert.Equal(t, 2, s.board.Len())

	rec = doRequest(t, s, http.MethodDelete, "/admin/queue/"+ids[1].String(), nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.board.Len())
	assert.Len(t, store.patients, 2, "seen patient is kept, removed patient is deleted")

	rec = doRequest(t, s, http.MethodGet, "/admin/queue", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	waiting := decode[[]db.Patient](t, rec)
	require.Len(t, waiting, 1)
	assert.Equal(t, ids[2], waiting[0].ID)
}

func TestQueue_Errors(t *testing.T) {
	s, store := newTestServer(t)
	token := staffToken(t, s, db.RoleStaff)

	rec := doRequest(t, s, http.MethodPost, "/admin/queue/not-a-uuid/seen", nil, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/admin/queue/"+uuid.NewString()+"/seen", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodDelete, "/admin/queue/"+uuid.NewString(), nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/check-in", validCheckIn(), "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[CheckInResponse](t, rec).ID

	store.markSeenErr = errors.New("db down")
	rec = doRequest(t, s, http.MethodPost, "/admin/queue/"+id.String()+"/seen", nil, token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", decode[map[string]string](t, rec)["error"])
	assert.Equal(t, 1, s.board.Len(), "board is restored after a failed update")
}

func TestWaitTime(t *testing.T) {
	s, _ := newTestServer(t)
	token := staffToken(t, s, db.RoleAdmin)

	rec := doRequest(t, s, http.MethodGet, "/wait-time", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 15, decode[WaitTimeResponse](t, rec).EstimatedWaitMinutes)

	rec = doRequest(t, s, http.MethodPut, "/admin/wait-time", map[string]int{"estimated_wait_minutes": 25}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodPut, "/admin/wait-time", map[string]int{"estimated_wait_minutes": 45}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, s, http.MethodGet, "/wait-time", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[WaitTimeResponse](t, rec)
	assert.Equal(t, 45, got.EstimatedWaitMinutes)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestArticles(t *testing.T) {
	s, _ := newTestServer(t)
	token := staffToken(t, s, db.RoleAdmin)

	article := map[string]string{
		"title":    "IV Therapy for Summer Heat",
		"category": db.ArticleCategoryFamily,
		"excerpt":  "Staying hydrated in the Valley.",
		"content":  strings.Repeat("Drink water and know the signs of heat exhaustion. ", 3),
	}
	rec := doRequest(t, s, http.MethodPost, "/admin/articles", article, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[db.Article](t, rec)
	assert.Equal(t, "iv-therapy-for-summer-heat", created.Slug)
	assert.True(t, created.Published)

	rec = doRequest(t, s, http.MethodPost, "/admin/articles", article, token)
	assert.Equal(t, http.StatusConflict, rec.Code)

	short := map[string]string{"title": "Hi", "category": "family", "content": "too short"}
	rec = doRequest(t, s, http.MethodPost, "/admin/articles", short, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/articles?category=family", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]db.ArticleSummary](t, rec), 1)

	rec = doRequest(t, s, http.MethodGet, "/articles?category=men", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = doRequest(t, s, http.MethodGet, "/articles?category=pets", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/articles/iv-therapy-for-summer-heat", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[db.Article](t, rec).ID)

	rec = doRequest(t, s, http.MethodGet, "/articles/missing-post", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTestimonialsLocalized(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/testimonials?lang=es", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]TestimonialResponse](t, rec)
	require.Len(t, got, 2)
	assert.Equal(t, "¡Excelente atención y sin seguro!", got[0].Quote)
	assert.Equal(t, "es", string(got[0].Language))
	assert.Equal(t, "In and out in 30 minutes.", got[1].Quote, "falls back to English")
	assert.Equal(t, "en", string(got[1].Language))

	rec = doRequest(t, s, http.MethodGet, "/testimonials", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Great care without insurance!", decode[[]TestimonialResponse](t, rec)[0].Quote)
}

func TestTestimonialsUnsupportedLanguageUsesServerDefault(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	s, err := NewWithStore(context.Background(), newMockStore(), Config{DefaultLanguage: "es"},
		&config.JWTConfig{Secret: handlerJWTSecret, ExpirationHours: 1, Issuer: "clinic-site-test"},
		&config.PasswordConfig{BcryptCost: bcrypt.MinCost},
	)
	require.NoError(t, err)
	defer s.Close()

	tests := []struct {
		name    string
		path    string
		headers []string
		want    string
	}{
		{"no preference", "/testimonials", nil, "es"},
		{"unsupported query", "/testimonials?lang=fr", nil, "es"},
		{"unsupported header", "/testimonials", []string{"Accept-Language", "de-DE"}, "es"},
		{"supported query", "/testimonials?lang=en", nil, "en"},
		{"supported header", "/testimonials", []string{"Accept-Language", "en-US"}, "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, s, http.MethodGet, tt.path, nil, "", tt.headers...)
			require.Equal(t, http.StatusOK, rec.Code)
			got := decode[[]TestimonialResponse](t, rec)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.want, string(got[0].Language))
		})
	}
}

func TestTranslations(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/i18n/es", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "es", rec.Header().Get("Content-Language"))
	table := decode[map[string]any](t, rec)
	checkIn, ok := table["checkIn"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "¡Registro completado!", checkIn["successToast"])

	rec = doRequest(t, s, http.MethodGet, "/i18n/fr", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshCatalog(t *testing.T) {
	s, store := newTestServer(t)
	token := staffToken(t, s, db.RoleAdmin)

	rec := doRequest(t, s, http.MethodGet, "/iv/catalog", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	store.mu.Lock()
	store.treatments[0].BasePrice = 130
	store.mu.Unlock()

	rec = doRequest(t, s, http.MethodPost, "/admin/catalog/refresh", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodPost, "/iv/quote",
		map[string]any{"actions": []map[string]string{{"op": "select_base", "id": "myers"}}}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 130.0, decode[ivbuilder.Selection](t, rec).Total, 0.001)
}

func TestRateLimitCheckIn(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	store := newMockStore()
	s, err := NewWithStore(context.Background(), store, Config{},
		&config.JWTConfig{Secret: handlerJWTSecret, ExpirationHours: 1, Issuer: "clinic-site-test"},
		&config.PasswordConfig{BcryptCost: bcrypt.MinCost},
	)
	require.NoError(t, err)
	defer s.Close()

	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = doRequest(t, s, http.MethodPost, "/check-in", validCheckIn(), "")
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Len(t, store.patients, 3)

	rec := doRequest(t, s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitPreflightAndRequestLog(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	core, logs := observer.New(zap.InfoLevel)
	s, err := NewWithStore(context.Background(), newMockStore(), Config{Logger: zap.New(core)},
		&config.JWTConfig{Secret: handlerJWTSecret, ExpirationHours: 1, Issuer: "clinic-site-test"},
		&config.PasswordConfig{BcryptCost: bcrypt.MinCost},
	)
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 5; i++ {
		rec := doRequest(t, s, http.MethodOptions, "/check-in", nil, "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = doRequest(t, s, http.MethodPost, "/check-in", validCheckIn(), "")
		if i < 3 {
			assert.Equal(t, http.StatusCreated, last.Code, "preflights must not use check-in tokens")
		}
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Access-Control-Allow-Origin"))

	requests := logs.FilterMessage("request").All()
	require.NotEmpty(t, requests)
	final := requests[len(requests)-1].ContextMap()
	assert.Equal(t, http.MethodPost, final["method"])
	assert.EqualValues(t, http.StatusTooManyRequests, final["status"])
}

// sseEvent reads lines until a complete event arrives, skipping pings.
func sseEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var name, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
	}
}

func TestQueueStream(t *testing.T) {
	s, _ := newTestServer(t)
	token := staffToken(t, s, db.RoleStaff)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/admin/queue/stream?access_token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	name, data := sseEvent(t, reader)
	assert.Equal(t, "snapshot", name)
	assert.Equal(t, "[]", data)

	body, err := json.Marshal(validCheckIn())
	require.NoError(t, err)
	post, err := http.Post(ts.URL+"/check-in", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	post.Body.Close()
	require.Equal(t, http.StatusCreated, post.StatusCode)

	name, data = sseEvent(t, reader)
	assert.Equal(t, "queue", name)
	var ev queue.Event
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, queue.EventInsert, ev.Type)
	assert.Equal(t, "Maria Lopez", ev.Patient.FullName)
}

func TestWaitTimeStream(t *testing.T) {
	s, _ := newTestServer(t)
	token := staffToken(t, s, db.RoleAdmin)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/wait-time/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	name, data := sseEvent(t, reader)
	assert.Equal(t, "wait_time", name)
	assert.Contains(t, data, `"estimated_wait_minutes":15`)

	rec := doRequest(t, s, http.MethodPut, "/admin/wait-time", map[string]int{"estimated_wait_minutes": 60}, token)
	require.Equal(t, http.StatusOK, rec.Code)

	_, data = sseEvent(t, reader)
	assert.Contains(t, data, `"estimated_wait_minutes":60`)
}
