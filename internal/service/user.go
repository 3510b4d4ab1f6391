package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abgdnv/storecatalog/internal/auth"
	cerrors "github.com/abgdnv/storecatalog/internal/errors"
	"github.com/abgdnv/storecatalog/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// UserService registers accounts and checks credentials.
type UserService struct {
	users     store.UserStore
	hashCost  int
	dummyHash []byte
	logger    *slog.Logger
}

// NewUserService creates a UserService hashing passwords with the given bcrypt cost.
// A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewUserService(users store.UserStore, hashCost int, logger *slog.Logger) *UserService {
	if hashCost < bcrypt.MinCost || hashCost > bcrypt.MaxCost {
		hashCost = bcrypt.DefaultCost
	}
	// compared against for unknown usernames so they cost as much as a bad password
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("not-a-password"), hashCost)
	return &UserService{users: users, hashCost: hashCost, dummyHash: dummyHash, logger: logger}
}

// Register creates an enabled, unlocked account.
// Returns ErrInvalidRole for an unknown role, ErrUserAlreadyExists when the
// username is taken and ErrPasswordTooLong when the password exceeds 72 bytes.
func (s *UserService) Register(ctx context.Context, dto RegisterUserDto) (*UserDto, error) {
	role, err := auth.ParseRole(dto.Role)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByUsername(ctx, dto.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username %s: %w", dto.Username, err)
	}
	if exists {
		return nil, cerrors.ErrUserAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.hashCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %w", cerrors.ErrPasswordTooLong, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.users.Create(ctx, store.User{
		Username:     dto.Username,
		PasswordHash: string(hash),
		Role:         role.String(),
		Locked:       false,
		Enabled:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", dto.Username, err)
	}
	return toUserDto(created), nil
}

// Authenticate implements auth.Authenticator.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*auth.Principal, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, cerrors.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, cerrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user %s: %w", username, err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, cerrors.ErrInvalidCredentials
	}
	if user.Locked || !user.Enabled {
		return nil, cerrors.ErrUserDisabled
	}

	role := auth.Role(user.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("user %s has a corrupt role %q: %w", username, user.Role, cerrors.ErrInvalidRole)
	}
	return &auth.Principal{ID: user.ID, Username: user.Username, Role: role}, nil
}

// FindByUsername returns ErrUserNotFound when the account does not exist.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*UserDto, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", username, err)
	}
	return toUserDto(user), nil
}

// SeedUsers registers the given accounts unless the username already exists.
// It returns the number of accounts created.
func (s *UserService) SeedUsers(ctx context.Context, users []RegisterUserDto) (int, error) {
	created := 0
	for _, u := range users {
		_, err := s.Register(ctx, u)
		if errors.Is(err, cerrors.ErrUserAlreadyExists) {
			continue
		}
		if err != nil {
			return created, fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
		s.logger.InfoContext(ctx, "Seeded user", "username", u.Username, "role", u.Role)
		created++
	}
	return created, nil
}
