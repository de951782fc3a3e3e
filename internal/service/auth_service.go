package service

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pushparajlokesh/ml-cts-pro/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// UserStore is the slice of the repository the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
}

type AuthService interface {
	SignUp(ctx context.Context, username, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*entity.User, error)
}

type authService struct {
	users UserStore
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(users UserStore) AuthService {
	return &authService{users: users}
}

// SignUp stores a new user with a bcrypt-hashed password.
func (s *authService) SignUp(ctx context.Context, username, email, password string) (*entity.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{Username: username, Email: email, Password: string(hashed)}
	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating user %s", email)
		return nil, err
	}

	return created, nil
}

// Login verifies the credentials and returns the user. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		logger.Warn().Err(err).Msgf("Login lookup failed for %s", email)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
