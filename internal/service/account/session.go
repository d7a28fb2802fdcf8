package account

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"storefront/internal/domain"
)

type sessionRepo interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type claims struct {
	UserID string `json:"uid"`
	Staff  bool   `json:"staff"`
	jwt.RegisteredClaims
}

// sessionManager signs tokens whose jti names a sessions row. A token is only
// valid while that row exists.
type sessionManager struct {
	repo   sessionRepo
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newSessionManager(repo sessionRepo, secret []byte, ttl time.Duration) *sessionManager {
	if ttl <= 0 {
		ttl = 14 * 24 * time.Hour
	}
	return &sessionManager{repo: repo, secret: secret, ttl: ttl, now: time.Now}
}

func (m *sessionManager) Issue(ctx context.Context, u domain.User) (string, time.Time, error) {
	now := m.now().UTC()
	expires := now.Add(m.ttl)
	sess := domain.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		IsStaff:   u.IsStaff,
		ExpiresAt: expires,
	}
	if err := m.repo.Create(ctx, sess); err != nil {
		return "", time.Time{}, err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: u.ID,
		Staff:  u.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (m *sessionManager) Validate(ctx context.Context, raw string) (*domain.Session, error) {
	if raw == "" {
		return nil, domain.ErrUnauthorized
	}
	c := &claims{}
	token, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid || c.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	sess, err := m.repo.Get(ctx, c.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if sess.UserID != c.UserID {
		return nil, domain.ErrUnauthorized
	}
	if m.now().After(sess.ExpiresAt) {
		_ = m.repo.Delete(ctx, sess.ID)
		return nil, domain.ErrUnauthorized
	}
	return sess, nil
}

func (m *sessionManager) Revoke(ctx context.Context, sessionID string) error {
	if err := m.repo.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}
