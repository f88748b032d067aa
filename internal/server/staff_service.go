package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/optimumcare/clinic-site/internal/config"
	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/types"
)

// dummyHash is compared against when the email is unknown so that login
// takes the same time whether or not the account exists.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3Fs8aV7Dz1Z7Pq5kRM9u0pS"

// StaffService provides business logic for staff account operations
type StaffService struct {
	store          StaffStore
	passwordConfig *config.PasswordConfig
}

// NewStaffService creates a new StaffService with the given dependencies
func NewStaffService(store StaffStore, passwordConfig *config.PasswordConfig) *StaffService {
	return &StaffService{
		store:          store,
		passwordConfig: passwordConfig,
	}
}

// toAPIStaff converts db.StaffUser to types.StaffUser, excluding the password hash
func toAPIStaff(u *db.StaffUser) *types.StaffUser {
	if u == nil {
		return nil
	}
	return &types.StaffUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Create registers a staff account. Used by the create-staff command.
func (s *StaffService) Create(ctx context.Context, req *types.CreateStaffRequest) (*types.StaffUser, error) {
	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u, err := s.store.CreateStaff(ctx, req.Name, req.Email, req.Role, passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, &ErrEmailAlreadyExists{Email: req.Email}
		}
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}
	return toAPIStaff(u), nil
}

// Login authenticates a staff member and returns the account
func (s *StaffService) Login(ctx context.Context, req *types.LoginRequest) (*types.StaffUser, error) {
	u, err := s.store.GetStaffByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff user by email: %w", err)
	}

	// Always return the same error for an unknown email or a wrong password.
	if u == nil {
		s.passwordConfig.VerifyPassword(req.Password, dummyHash)
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, u.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	return toAPIStaff(u), nil
}

// Get returns a staff account by ID
func (s *StaffService) Get(ctx context.Context, staffID uuid.UUID) (*types.StaffUser, error) {
	u, err := s.store.GetStaff(ctx, staffID)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff user: %w", err)
	}
	if u == nil {
		return nil, &ErrStaffNotFound{StaffID: staffID}
	}
	return toAPIStaff(u), nil
}

// UpdatePassword changes a staff member's password after checking the current one
func (s *StaffService) UpdatePassword(ctx context.Context, staffID uuid.UUID, currentPassword, newPassword string) error {
	u, err := s.store.GetStaff(ctx, staffID)
	if err != nil {
		return fmt.Errorf("failed to get staff user: %w", err)
	}
	if u == nil {
		return &ErrStaffNotFound{StaffID: staffID}
	}

	if !s.passwordConfig.VerifyPassword(currentPassword, u.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	newPasswordHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.store.UpdateStaffPassword(ctx, staffID, newPasswordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
