package server

import (
	"context"

	"github.com/google/uuid"
	"github.com/optimumcare/clinic-site/internal/catalog"
	"github.com/optimumcare/clinic-site/internal/db"
)

// Store is the persistence the HTTP layer depends on. *db.DB implements it.
type Store interface {
	catalog.Loader

	CreatePatient(ctx context.Context, in *db.PatientInput) (*db.Patient, error)
	ListWaitingPatients(ctx context.Context) ([]db.Patient, error)
	MarkPatientSeen(ctx context.Context, id uuid.UUID) (*db.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) (*db.Patient, error)

	GetClinicStatus(ctx context.Context) (*db.ClinicStatus, error)
	UpdateWaitTime(ctx context.Context, minutes int) (*db.ClinicStatus, error)

	CreateArticle(ctx context.Context, in *db.ArticleInput) (*db.Article, error)
	ListPublishedArticles(ctx context.Context, category string) ([]db.ArticleSummary, error)
	GetPublishedArticle(ctx context.Context, slug string) (*db.Article, error)

	ListTestimonials(ctx context.Context) ([]db.Testimonial, error)

	StaffStore

	Ping(ctx context.Context) error
	Close()
}

// StaffStore is the subset of Store used for staff accounts.
type StaffStore interface {
	CreateStaff(ctx context.Context, name, email, role, passwordHash string) (*db.StaffUser, error)
	GetStaff(ctx context.Context, id uuid.UUID) (*db.StaffUser, error)
	GetStaffByEmail(ctx context.Context, email string) (*db.StaffUser, error)
	UpdateStaffPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

var _ Store = (*db.DB)(nil)
