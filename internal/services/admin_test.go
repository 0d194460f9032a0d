package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminService_RegisterAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.admins.Register(ctx, " Admin@Fonzi.com ", "secret123", "Caja")
	require.NoError(t, err)
	assert.Equal(t, "admin@fonzi.com", a.Email)
	assert.NotEqual(t, "secret123", a.Password)

	_, err = f.admins.Register(ctx, "ADMIN@fonzi.com", "other123", "Otro")
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, CodeEmailAlreadyRegistered, err.(*Error).Code)

	got, err := f.admins.Authenticate(ctx, "admin@FONZI.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.admins.Authenticate(ctx, "admin@fonzi.com", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, CodeInvalidCredentials, err.(*Error).Code)

	_, err = f.admins.Authenticate(ctx, "nobody@fonzi.com", "secret123")
	assert.ErrorIs(t, err, ErrUnauthorized)

	ok, err := f.admins.Exists(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.admins.Exists(ctx, a.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)

	byID, err := f.admins.FindByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Caja", byID.Name)
}

func TestAdminService_ExistsReportsDatabaseErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.admins.Register(ctx, "caja@fonzi.com", "secret123", "Caja")
	require.NoError(t, err)

	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	ok, err := f.admins.Exists(ctx, a.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestAdminService_RegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name, email, password, user, field string
	}{
		{"bad email", "not-an-email", "secret123", "X", "email"},
		{"missing password", "a@b.com", "", "X", "password"},
		{"short password", "a@b.com", "123", "X", "password"},
		{"missing name", "a@b.com", "secret123", " ", "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.admins.Register(ctx, tt.email, tt.password, tt.user)
			require.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.(*Error).Fields, tt.field)
		})
	}
}
