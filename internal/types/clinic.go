package types

import (
	"regexp"
	"strings"

	"github.com/optimumcare/clinic-site/internal/catalog"
)

// Symptom categories offered on the check-in form.
const (
	SymptomSickVisit         = "sick_visit"
	SymptomChronicCare       = "chronic_care"
	SymptomPreventive        = "preventive"
	SymptomEmploymentTesting = "employment_testing"
	SymptomProcedure         = "procedure"
	SymptomIVWellness        = "iv_wellness"
)

// SymptomCategories lists the check-in categories in form order.
var SymptomCategories = []string{
	SymptomSickVisit,
	SymptomChronicCare,
	SymptomPreventive,
	SymptomEmploymentTesting,
	SymptomProcedure,
	SymptomIVWellness,
}

// AllowedWaitMinutes are the wait estimates staff can post.
var AllowedWaitMinutes = []int{5, 10, 15, 20, 30, 45, 60}

// IVSelectionRequest names a drip by catalog ids. The server prices it.
type IVSelectionRequest struct {
	BaseID   string   `json:"base_id" validate:"required"`
	AddonIDs []string `json:"addon_ids" validate:"omitempty,unique,dive,required"`
}

// CheckInRequest is the walk-in check-in form.
type CheckInRequest struct {
	FullName           string              `json:"full_name" validate:"required,min=2,max=100"`
	PhoneNumber        string              `json:"phone_number" validate:"required,min=10,max=20"`
	SymptomCategory    string              `json:"symptom_category" validate:"required,oneof=sick_visit chronic_care preventive employment_testing procedure iv_wellness"`
	LanguagePref       string              `json:"language_pref,omitempty" validate:"omitempty,oneof=en es"`
	CashPayAcknowledge bool                `json:"cash_pay_acknowledge" validate:"eq=true"`
	IVSelection        *IVSelectionRequest `json:"iv_selection,omitempty"`
}

// Normalize trims the free-text fields.
func (r *CheckInRequest) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.LanguagePref = strings.ToLower(strings.TrimSpace(r.LanguagePref))
}

// Validate validates the CheckInRequest using the validator.
func (r *CheckInRequest) Validate() error {
	return validate.Struct(r)
}

// QuoteRequest replays builder actions against the current catalog.
type QuoteRequest struct {
	Actions []catalog.Action `json:"actions" validate:"dive"`
}

// Validate validates the QuoteRequest using the validator.
func (r *QuoteRequest) Validate() error {
	return validate.Struct(r)
}

// WaitTimeRequest sets the posted wait estimate.
type WaitTimeRequest struct {
	EstimatedWaitMinutes int `json:"estimated_wait_minutes" validate:"required,oneof=5 10 15 20 30 45 60"`
}

// Validate validates the WaitTimeRequest using the validator.
func (r *WaitTimeRequest) Validate() error {
	return validate.Struct(r)
}

// ArticleRequest is the Health Hub editor form.
type ArticleRequest struct {
	Title    string `json:"title" validate:"required,min=5,max=200"`
	Slug     string `json:"slug" validate:"required,min=3,max=100,slug"`
	Category string `json:"category" validate:"required,oneof=men women family"`
	Excerpt  string `json:"excerpt,omitempty" validate:"max=300"`
	Content  string `json:"content" validate:"required,min=50"`
	ImageURL string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// Normalize trims fields and fills an empty slug from the title.
func (r *ArticleRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Excerpt = strings.TrimSpace(r.Excerpt)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	if r.Slug == "" {
		r.Slug = GenerateSlug(r.Title)
	}
}

// Validate validates the ArticleRequest using the validator.
func (r *ArticleRequest) Validate() error {
	return validate.Struct(r)
}

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// GenerateSlug lowercases title, drops anything but letters, digits, spaces
// and hyphens, then joins words with single hyphens.
func GenerateSlug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
