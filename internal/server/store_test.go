package server

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/ivbuilder"
)

// mockStore is an in-memory Store for handler tests.
type mockStore struct {
	mu sync.Mutex

	treatments   []ivbuilder.Treatment
	addons       []ivbuilder.Addon
	catalogLoads int

	patients []db.Patient
	status   *db.ClinicStatus
	articles []db.Article
	reviews  []db.Testimonial
	staff    map[uuid.UUID]*db.StaffUser

	pingErr          error
	createPatientErr error
	markSeenErr      error
}

func newMockStore() *mockStore {
	es := "¡Excelente atención y sin seguro!"
	return &mockStore{
		treatments: []ivbuilder.Treatment{
			{ID: "myers", Name: "Myers' Cocktail", BasePrice: 120, DurationMin: 45, Benefits: []string{"Energy"}},
			{ID: "hydration", Name: "Hydration", BasePrice: 95, DurationMin: 30, Benefits: []string{}},
		},
		addons: []ivbuilder.Addon{
			{ID: "b12", Name: "Vitamin B12", Price: 25, Category: "vitamin"},
			{ID: "glutathione", Name: "Glutathione", Price: 40, Category: "antioxidant"},
		},
		reviews: []db.Testimonial{
			{ID: uuid.New(), AuthorName: "Rosa G.", QuoteEN: "Great care without insurance!", QuoteES: &es, Rating: 5},
			{ID: uuid.New(), AuthorName: "Tom B.", QuoteEN: "In and out in 30 minutes.", Rating: 5},
		},
		staff: make(map[uuid.UUID]*db.StaffUser),
	}
}

func (m *mockStore) ListTreatments(context.Context) ([]ivbuilder.Treatment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catalogLoads++
	return append([]ivbuilder.Treatment(nil), m.treatments...), nil
}

func (m *mockStore) ListAddons(context.Context) ([]ivbuilder.Addon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ivbuilder.Addon(nil), m.addons...), nil
}

func (m *mockStore) CreatePatient(_ context.Context, in *db.PatientInput) (*db.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createPatientErr != nil {
		return nil, m.createPatientErr
	}
	p := db.Patient{
		ID:              uuid.New(),
		FullName:        in.FullName,
		PhoneNumber:     in.PhoneNumber,
		SymptomCategory: in.SymptomCategory,
		LanguagePref:    in.LanguagePref,
		IVSelection:     in.IVSelection,
		CreatedAt:       time.Now(),
	}
	m.patients = append(m.patients, p)
	return &p, nil
}

func (m *mockStore) ListWaitingPatients(context.Context) ([]db.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.Patient
	for _, p := range m.patients {
		if !p.IsSeen {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStore) MarkPatientSeen(_ context.Context, id uuid.UUID) (*db.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markSeenErr != nil {
		return nil, m.markSeenErr
	}
	for i := range m.patients {
		if m.patients[i].ID == id {
			m.patients[i].IsSeen = true
			p := m.patients[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *mockStore) DeletePatient(_ context.Context, id uuid.UUID) (*db.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.patients {
		if p.ID == id {
			m.patients = append(m.patients[:i], m.patients[i+1:]...)
			return &p, nil
		}
	}
	return nil, nil
}

func (m *mockStore) GetClinicStatus(context.Context) (*db.ClinicStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == nil {
		return nil, nil
	}
	st := *m.status
	return &st, nil
}

func (m *mockStore) UpdateWaitTime(_ context.Context, minutes int) (*db.ClinicStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == nil {
		m.status = &db.ClinicStatus{ID: uuid.New()}
	}
	m.status.EstimatedWaitMinutes = minutes
	m.status.UpdatedAt = time.Now()
	st := *m.status
	return &st, nil
}

func (m *mockStore) CreateArticle(_ context.Context, in *db.ArticleInput) (*db.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.articles {
		if a.Slug == in.Slug {
			return nil, db.ErrDuplicateSlug
		}
	}
	a := db.Article{
		ID:        uuid.New(),
		Title:     in.Title,
		Slug:      in.Slug,
		Category:  in.Category,
		Content:   in.Content,
		Published: in.Published,
		CreatedAt: time.Now().Add(time.Duration(len(m.articles)) * time.Second),
	}
	if in.Excerpt != "" {
		a.Excerpt = &in.Excerpt
	}
	if in.ImageURL != "" {
		a.ImageURL = &in.ImageURL
	}
	m.articles = append(m.articles, a)
	return &a, nil
}

func (m *mockStore) ListPublishedArticles(_ context.Context, category string) ([]db.ArticleSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.ArticleSummary
	for _, a := range m.articles {
		if !a.Published || (category != "" && a.Category != category) {
			continue
		}
		out = append(out, db.ArticleSummary{
			ID: a.ID, Title: a.Title, Slug: a.Slug, Category: a.Category,
			Excerpt: a.Excerpt, ImageURL: a.ImageURL, CreatedAt: a.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockStore) GetPublishedArticle(_ context.Context, slug string) (*db.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.articles {
		if a.Slug == slug && a.Published {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *mockStore) ListTestimonials(context.Context) ([]db.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]db.Testimonial(nil), m.reviews...), nil
}

func (m *mockStore) CreateStaff(_ context.Context, name, email, role, passwordHash string) (*db.StaffUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.staff {
		if u.Email == email {
			return nil, db.ErrDuplicateEmail
		}
	}
	u := &db.StaffUser{
		ID: uuid.New(), Name: name, Email: email, Role: role, PasswordHash: passwordHash,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	m.staff[u.ID] = u
	cp := *u
	return &cp, nil
}

func (m *mockStore) GetStaff(_ context.Context, id uuid.UUID) (*db.StaffUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.staff[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockStore) GetStaffByEmail(_ context.Context, email string) (*db.StaffUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.staff {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockStore) UpdateStaffPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.staff[id]
	if !ok {
		return errors.New("staff user not found")
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }

func (m *mockStore) Close() {}
