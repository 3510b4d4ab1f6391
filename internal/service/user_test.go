package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abgdnv/storecatalog/internal/auth"
	cerrors "github.com/abgdnv/storecatalog/internal/errors"
	"github.com/abgdnv/storecatalog/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// failingUserStore fails every call with err.
type failingUserStore struct {
	err error
}

func (f failingUserStore) FindByUsername(context.Context, string) (*store.User, error) {
	return nil, f.err
}

func (f failingUserStore) ExistsByUsername(context.Context, string) (bool, error) {
	return false, f.err
}

func (f failingUserStore) Create(context.Context, store.User) (*store.User, error) {
	return nil, f.err
}

func newUserService(t *testing.T) (*UserService, *store.InMemoryUserStore) {
	t.Helper()
	users := store.NewInMemoryUserStore()
	return NewUserService(users, bcrypt.MinCost, discardLogger()), users
}

func Test_UserService_Register(t *testing.T) {
	testCases := []struct {
		name         string
		dto          RegisterUserDto
		expectedRole string
		expectError  error
	}{
		{name: "Success - lower case role", dto: RegisterUserDto{Username: "bob", Password: "secret1", Role: "admin"}, expectedRole: "ADMIN"},
		{name: "Error - unknown role", dto: RegisterUserDto{Username: "bob", Password: "secret1", Role: "ROOT"}, expectError: cerrors.ErrInvalidRole},
		{name: "Error - username taken", dto: RegisterUserDto{Username: "taken", Password: "secret1", Role: "USER"}, expectError: cerrors.ErrUserAlreadyExists},
		{name: "Error - multibyte password over 72 bytes", dto: RegisterUserDto{Username: "bob", Password: strings.Repeat("é", 40), Role: "USER"}, expectError: cerrors.ErrPasswordTooLong},
		{name: "Success - multibyte password of 72 bytes", dto: RegisterUserDto{Username: "bob", Password: strings.Repeat("é", 36), Role: "user"}, expectedRole: "USER"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			service, users := newUserService(t)
			_, err := users.Create(context.Background(), store.User{Username: "taken", Role: "USER", Enabled: true})
			require.NoError(t, err)

			// when
			created, err := service.Register(context.Background(), tc.dto)

			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, created)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedRole, created.Role)
			assert.True(t, created.Enabled)
			assert.False(t, created.Locked)

			stored, err := users.FindByUsername(context.Background(), tc.dto.Username)
			require.NoError(t, err)
			assert.NotEqual(t, tc.dto.Password, stored.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(tc.dto.Password)))
		})
	}
}

func Test_UserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	service, users := newUserService(t)
	_, err := service.Register(ctx, RegisterUserDto{Username: "owner", Password: "123456", Role: "OWNER"})
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.Create(ctx, store.User{Username: "locked", PasswordHash: string(hash), Role: "USER", Locked: true, Enabled: true})
	require.NoError(t, err)
	_, err = users.Create(ctx, store.User{Username: "disabled", PasswordHash: string(hash), Role: "USER", Enabled: false})
	require.NoError(t, err)
	_, err = users.Create(ctx, store.User{Username: "corrupt", PasswordHash: string(hash), Role: "root", Enabled: true})
	require.NoError(t, err)

	testCases := []struct {
		name         string
		username     string
		password     string
		expectedRole auth.Role
		expectError  error
	}{
		{name: "Success", username: "owner", password: "123456", expectedRole: auth.RoleOwner},
		{name: "Error - wrong password", username: "owner", password: "nope", expectError: cerrors.ErrInvalidCredentials},
		{name: "Error - unknown user", username: "ghost", password: "123456", expectError: cerrors.ErrInvalidCredentials},
		{name: "Error - locked", username: "locked", password: "123456", expectError: cerrors.ErrUserDisabled},
		{name: "Error - disabled", username: "disabled", password: "123456", expectError: cerrors.ErrUserDisabled},
		{name: "Error - stored role unknown", username: "corrupt", password: "123456", expectError: cerrors.ErrInvalidRole},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			principal, err := service.Authenticate(ctx, tc.username, tc.password)
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				assert.Nil(t, principal)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.username, principal.Username)
			assert.Equal(t, tc.expectedRole, principal.Role)
		})
	}
}

func Test_UserService_Authenticate_StoreError(t *testing.T) {
	// given
	errStore := errors.New("connection refused")
	service := NewUserService(failingUserStore{err: errStore}, bcrypt.MinCost, discardLogger())

	// when
	_, err := service.Authenticate(context.Background(), "bob", "pw")

	// then
	assert.ErrorIs(t, err, errStore)
	assert.NotErrorIs(t, err, cerrors.ErrInvalidCredentials)
}

func Test_UserService_SeedUsers(t *testing.T) {
	// given
	ctx := context.Background()
	service, _ := newUserService(t)
	seed := []RegisterUserDto{
		{Username: "user", Password: "123456", Role: "USER"},
		{Username: "admin", Password: "123456", Role: "ADMIN"},
	}

	// when
	first, err := service.SeedUsers(ctx, seed)
	require.NoError(t, err)
	second, err := service.SeedUsers(ctx, seed)
	require.NoError(t, err)

	// then
	assert.Equal(t, 2, first)
	assert.Equal(t, 0, second)
	found, err := service.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", found.Role)
}

func Test_UserService_SeedUsers_InvalidRole(t *testing.T) {
	service, _ := newUserService(t)

	_, err := service.SeedUsers(context.Background(), []RegisterUserDto{{Username: "x", Password: "123456", Role: "GOD"}})

	assert.ErrorIs(t, err, cerrors.ErrInvalidRole)
}
