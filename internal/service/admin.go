package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"lifelink-api-server/internal/models"
)

// AdminService covers the admin's user management: listings, block/unblock
// and removal.
type AdminService struct {
	users UserStore
	log   *zap.SugaredLogger
}

func NewAdminService(users UserStore, log *zap.SugaredLogger) *AdminService {
	return &AdminService{users: users, log: log}
}

// ListUsers returns every user of the given role.
func (s *AdminService) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	switch role {
	case models.RoleDonor, models.RoleOrganisation, models.RoleHospital, models.RoleAdmin:
		return s.users.ListByRole(ctx, role)
	}
	return nil, fmt.Errorf("unknown role %q: %w", role, ErrInvalidInput)
}

// BlockUser suspends an account. Admins cannot block each other.
func (s *AdminService) BlockUser(ctx context.Context, adminID, userID primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return fmt.Errorf("admin accounts cannot be blocked: %w", ErrForbidden)
	}
	if user.Status == models.UserBlocked {
		return fmt.Errorf("user is already blocked: %w", ErrInvalidInput)
	}
	now := time.Now()
	if err := s.users.SetStatus(ctx, userID, models.UserBlocked, &adminID, &now); err != nil {
		return err
	}
	s.log.Infow("user blocked", "user", userID.Hex(), "by", adminID.Hex())
	return nil
}

// UnblockUser reinstates a blocked account.
func (s *AdminService) UnblockUser(ctx context.Context, adminID, userID primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Status != models.UserBlocked {
		return fmt.Errorf("user is not blocked: %w", ErrInvalidInput)
	}
	if err := s.users.SetStatus(ctx, userID, models.UserActive, nil, nil); err != nil {
		return err
	}
	s.log.Infow("user unblocked", "user", userID.Hex(), "by", adminID.Hex())
	return nil
}

// DeleteUser removes an account. Ledger entries referencing the user stay:
// the ledger is append-only history.
func (s *AdminService) DeleteUser(ctx context.Context, adminID, userID primitive.ObjectID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return fmt.Errorf("admin accounts cannot be deleted: %w", ErrForbidden)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Infow("user deleted", "user", userID.Hex(), "by", adminID.Hex())
	return nil
}
