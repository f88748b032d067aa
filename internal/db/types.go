package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/optimumcare/clinic-site/internal/ivbuilder"
)

// Patient is a walk-in check-in waiting in the queue.
type Patient struct {
	ID              uuid.UUID            `json:"id"`
	FullName        string               `json:"full_name"`
	PhoneNumber     string               `json:"phone_number"`
	SymptomCategory string               `json:"symptom_category"`
	LanguagePref    string               `json:"language_pref"`
	IVSelection     *ivbuilder.Selection `json:"iv_selection,omitempty"`
	IsSeen          bool                 `json:"is_seen"`
	CreatedAt       time.Time            `json:"created_at"`
}

// PatientInput holds the fields written on check-in.
type PatientInput struct {
	FullName        string
	PhoneNumber     string
	SymptomCategory string
	LanguagePref    string
	IVSelection     *ivbuilder.Selection
}

// ClinicStatus is the single row carrying the current estimated wait.
type ClinicStatus struct {
	ID                   uuid.UUID `json:"id"`
	EstimatedWaitMinutes int       `json:"estimated_wait_minutes"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Article categories
const (
	ArticleCategoryMen    = "men"
	ArticleCategoryWomen  = "women"
	ArticleCategoryFamily = "family"
)

// Article is a Health Hub post.
type Article struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Category  string    `json:"category"`
	Excerpt   *string   `json:"excerpt"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleSummary is the list view of an article, without its body.
type ArticleSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Category  string    `json:"category"`
	Excerpt   *string   `json:"excerpt"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ArticleInput holds the fields for a new article. Empty optional fields are
// stored as NULL.
type ArticleInput struct {
	Title     string
	Slug      string
	Category  string
	Excerpt   string
	Content   string
	ImageURL  string
	Published bool
}

// Testimonial is a patient review shown on the landing page.
type Testimonial struct {
	ID         uuid.UUID `json:"id"`
	AuthorName string    `json:"author_name"`
	QuoteEN    string    `json:"quote_en"`
	QuoteES    *string   `json:"quote_es,omitempty"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}

// Staff roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// StaffUser is a clinic staff account for the admin console.
type StaffUser struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
