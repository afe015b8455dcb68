package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifelink-api-server/internal/models"
)

func newAdminFixture(t *testing.T) (*AdminService, *memUsers, *models.User, *models.User) {
	t.Helper()
	admin := &models.User{Role: models.RoleAdmin, Email: "admin@example.com"}
	donor := &models.User{Role: models.RoleDonor, Name: "Asha", Email: "asha@example.com"}
	users := newMemUsers(admin, donor)
	return NewAdminService(users, testLogger()), users, admin, donor
}

func TestAdminListUsers(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)

	donors, err := svc.ListUsers(context.Background(), models.RoleDonor)
	require.NoError(t, err)
	assert.Len(t, donors, 1)

	_, err = svc.ListUsers(context.Background(), "superuser")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAdminBlockAndUnblock(t *testing.T) {
	svc, users, admin, donor := newAdminFixture(t)

	require.NoError(t, svc.BlockUser(context.Background(), admin.ID, donor.ID))
	blocked, err := users.FindByID(context.Background(), donor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserBlocked, blocked.Status)
	require.NotNil(t, blocked.BlockedBy)
	assert.Equal(t, admin.ID, *blocked.BlockedBy)
	assert.NotNil(t, blocked.BlockedAt)

	// blocking twice is an error
	err = svc.BlockUser(context.Background(), admin.ID, donor.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.UnblockUser(context.Background(), admin.ID, donor.ID))
	active, err := users.FindByID(context.Background(), donor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserActive, active.Status)
	assert.Nil(t, active.BlockedBy)
}

func TestAdminCannotBlockAdmins(t *testing.T) {
	svc, _, admin, _ := newAdminFixture(t)

	err := svc.BlockUser(context.Background(), admin.ID, admin.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	err = svc.DeleteUser(context.Background(), admin.ID, admin.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAdminDeleteUser(t *testing.T) {
	svc, users, admin, donor := newAdminFixture(t)

	require.NoError(t, svc.DeleteUser(context.Background(), admin.ID, donor.ID))
	_, err := users.FindByID(context.Background(), donor.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
