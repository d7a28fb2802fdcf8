// Package account handles customer and staff registration, login and the
// sessions that back every authenticated request.
package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"storefront/internal/domain"
)

// ErrInvalidCredentials is returned when the username/password pair does not
// match, or when the account belongs to the other namespace.
var ErrInvalidCredentials = errors.New("invalid credentials or insufficient permissions")

type userRepo interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListStaff(ctx context.Context) ([]domain.User, error)
}

type customerRepo interface {
	GetOrCreateByUser(ctx context.Context, userID string) (*domain.Customer, error)
}

type Service struct {
	users       userRepo
	customers   customerRepo
	sessions    *sessionManager
	passwordMin int
	logger      *log.Logger
}

func New(users userRepo, customers customerRepo, sessions sessionRepo, secret string, ttl time.Duration, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		users:       users,
		customers:   customers,
		sessions:    newSessionManager(sessions, []byte(secret), ttl),
		passwordMin: 8,
		logger:      logger,
	}
}

// SignupInput captures the registration form for both namespaces.
type SignupInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Principal is the caller behind a valid session.
type Principal struct {
	User      domain.User
	SessionID string
}

// Login is a successful sign-in.
type Login struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Signup registers a storefront customer and creates the customer profile.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.User, *domain.Customer, error) {
	u, err := s.create(ctx, in, false)
	if err != nil {
		return nil, nil, err
	}
	c, err := s.customers.GetOrCreateByUser(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	return u, c, nil
}

// CreateStaff registers a staff account. Staff never get a customer profile.
func (s *Service) CreateStaff(ctx context.Context, in SignupInput) (*domain.User, error) {
	return s.create(ctx, in, true)
}

func (s *Service) ListStaff(ctx context.Context) ([]domain.User, error) {
	return s.users.ListStaff(ctx)
}

func (s *Service) create(ctx context.Context, in SignupInput, staff bool) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	password := strings.TrimSpace(in.Password)

	verr := &domain.ValidationError{}
	if username == "" {
		verr.Add("username", "required")
	} else if strings.ContainsAny(username, " @/") {
		verr.Add("username", "may not contain spaces, @ or /")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "must be a valid email address")
	}
	if err := validatePassword(password, s.passwordMin); err != nil {
		verr.Add("password", err.Error())
	}
	if !verr.Empty() {
		return nil, verr
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Create(ctx, domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		IsStaff:      staff,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("username", "already taken")
		}
		return nil, err
	}
	s.logger.Printf("account service: registered username=%s staff=%t", u.Username, u.IsStaff)
	return u, nil
}

// Login checks credentials and opens a session. staff selects the namespace:
// customer login refuses staff accounts and the admin login refuses
// customers.
func (s *Service) Login(ctx context.Context, username, password string, staff bool) (*Login, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, domain.NewValidationError("credentials", "enter both username and password")
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.IsStaff != staff {
		s.logger.Printf("account service: login refused username=%s staff=%t namespace_staff=%t", u.Username, u.IsStaff, staff)
		return nil, ErrInvalidCredentials
	}
	if !u.IsStaff {
		if _, err := s.customers.GetOrCreateByUser(ctx, u.ID); err != nil {
			return nil, err
		}
	}

	token, expires, err := s.sessions.Issue(ctx, *u)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &Login{User: u, Token: token, ExpiresAt: expires}, nil
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	sess, err := s.sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return &Principal{User: *u, SessionID: sess.ID}, nil
}

// Terminate ends a session. Ending an unknown session is not an error.
func (s *Service) Terminate(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// PurgeExpired removes sessions past their expiry.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.repo.DeleteExpired(ctx)
}

// SessionTTL exposes the session lifetime, for cookie max-age.
func (s *Service) SessionTTL() time.Duration {
	return s.sessions.ttl
}

func validatePassword(p string, min int) error {
	if len(p) < min {
		return fmt.Errorf("must be at least %d characters", min)
	}
	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, r := range p {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("must contain at least 1 uppercase letter, 1 lowercase letter, and 1 number")
	}
	return nil
}
