package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pushparajlokesh/ml-cts-pro/internal/entity"
)

type fakeUsers struct {
	byEmail map[string]*entity.User
	nextID  int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: map[string]*entity.User{}}
}

func (f *fakeUsers) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	f.nextID++
	user.ID = f.nextID
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func TestSignUp_HashesPassword(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(users)

	created, err := svc.SignUp(context.Background(), "alice", "a@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
	assert.NotEqual(t, "secret", created.Password, "plaintext must never be stored")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret")))
}

func TestLogin_Scenario(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(users)

	_, err := svc.SignUp(context.Background(), "alice", "a@x.com", "secret")
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "a@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Login(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@x.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
