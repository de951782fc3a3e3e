// Package session implements the server-side login session: a signed cookie
// token carrying the session id plus a Redis record holding liveness and the
// last prediction result filename.
//
// Known limitation: two concurrent predictions under one login race on the
// result filename; the last write wins and the earlier file is left on disk
// unreferenced.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pushparajlokesh/ml-cts-pro/internal/entity"
)

const TTL = 24 * time.Hour

var (
	ErrNotFound = errors.New("session not found")
	ErrNoResult = errors.New("no prediction result recorded")
)

// Session is the request-scoped view of a logged-in user.
type Session struct {
	SID      string `json:"sid"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
}

// Claims is what the session cookie token carries.
type Claims struct {
	SID      string `json:"sid"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Store struct {
	rdb    *redis.Client
	secret []byte
}

func NewStore(rdb *redis.Client, secret []byte) *Store {
	return &Store{rdb: rdb, secret: secret}
}

func (s *Store) Secret() []byte {
	return s.secret
}

// Create registers a new session for the user and returns the signed cookie
// token.
func (s *Store) Create(ctx context.Context, user *entity.User) (string, error) {
	sid, err := newSID()
	if err != nil {
		return "", err
	}

	sess := Session{SID: sid, UserID: user.ID, Username: user.Username}
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, sessionKey(sid), payload, TTL).Err(); err != nil {
		return "", err
	}

	return SignToken(sess, s.secret)
}

// Resolve turns validated cookie claims into a live session. A session whose
// Redis record is gone (logged out or expired) resolves to ErrNotFound even
// if the token itself is still valid.
func (s *Store) Resolve(ctx context.Context, claims *Claims) (*Session, error) {
	n, err := s.rdb.Exists(ctx, sessionKey(claims.SID)).Result()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return &Session{SID: claims.SID, UserID: claims.UserID, Username: claims.Username}, nil
}

// SetResultFile records the latest prediction output filename, replacing any
// previous one. Only the prediction pipeline writes this field.
func (s *Store) SetResultFile(ctx context.Context, sid, filename string) error {
	return s.rdb.Set(ctx, resultKey(sid), filename, TTL).Err()
}

// ResultFile returns the recorded filename, or ErrNoResult if this session
// has not produced one.
func (s *Store) ResultFile(ctx context.Context, sid string) (string, error) {
	name, err := s.rdb.Get(ctx, resultKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoResult
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// Destroy drops the session record and its result reference.
func (s *Store) Destroy(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, sessionKey(sid), resultKey(sid)).Err()
}

// SignToken mints the HS256 cookie token for a session.
func SignToken(sess Session, secret []byte) (string, error) {
	claims := &Claims{
		SID:      sess.SID,
		UserID:   sess.UserID,
		Username: sess.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates a cookie token and returns its claims.
func ParseToken(token string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

func newSID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func sessionKey(sid string) string {
	return fmt.Sprintf("session:%s", sid)
}

func resultKey(sid string) string {
	return fmt.Sprintf("session:%s:result", sid)
}
