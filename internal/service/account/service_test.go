package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storefront/internal/domain"
)

// memoryUsers is a lightweight in-memory user repository for tests.
type memoryUsers struct {
	byName map[string]domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byName: make(map[string]domain.User)}
}

func (r *memoryUsers) Create(_ context.Context, u domain.User) (*domain.User, error) {
	key := strings.ToLower(u.Username)
	if _, exists := r.byName[key]; exists {
		return nil, domain.ErrAlreadyExists
	}
	u.ID = "user-" + key
	r.byName[key] = u
	clone := u
	return &clone, nil
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byName {
		if u.ID == id {
			clone := u
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.byName[strings.ToLower(username)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *memoryUsers) ListStaff(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.byName {
		if u.IsStaff {
			out = append(out, u)
		}
	}
	return out, nil
}

type memoryCustomers struct {
	byUser map[string]domain.Customer
}

func (r *memoryCustomers) GetOrCreateByUser(_ context.Context, userID string) (*domain.Customer, error) {
	c, ok := r.byUser[userID]
	if !ok {
		c = domain.Customer{ID: "cust-" + userID, UserID: userID}
		r.byUser[userID] = c
	}
	return &c, nil
}

type memorySessions struct {
	rows map[string]domain.Session
}

func (r *memorySessions) Create(_ context.Context, s domain.Session) error {
	if _, ok := r.rows[s.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.rows[s.ID] = s
	return nil
}

func (r *memorySessions) Get(_ context.Context, id string) (*domain.Session, error) {
	s, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *memorySessions) Delete(_ context.Context, id string) error {
	if _, ok := r.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for id, s := range r.rows {
		if time.Now().After(s.ExpiresAt) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func newTestService() (*Service, *memorySessions, *memoryCustomers) {
	sessions := &memorySessions{rows: make(map[string]domain.Session)}
	customers := &memoryCustomers{byUser: make(map[string]domain.Customer)}
	return New(newMemoryUsers(), customers, sessions, "test-secret", time.Hour, nil), sessions, customers
}

var maria = SignupInput{Username: "maria", Email: "Maria@Example.com", Password: "Passw0rd!", FirstName: "Maria"}

func TestSignupCreatesCustomerProfile(t *testing.T) {
	svc, _, customers := newTestService()
	u, c, err := svc.Signup(context.Background(), maria)
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if u.IsStaff {
		t.Fatalf("customer signup must not create staff")
	}
	if u.Email != "maria@example.com" {
		t.Fatalf("expected lowercased email, got %s", u.Email)
	}
	if u.PasswordHash == maria.Password {
		t.Fatalf("password stored in clear text")
	}
	if c.UserID != u.ID || len(customers.byUser) != 1 {
		t.Fatalf("expected customer profile for %s", u.ID)
	}
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := newTestService()
	_, _, err := svc.Signup(context.Background(), SignupInput{Username: "bad name", Email: "nope", Password: "short"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"username", "email", "password"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("expected %s problem, got %v", field, verr.Fields)
		}
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService()
	if _, _, err := svc.Signup(context.Background(), maria); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	_, _, err := svc.Signup(context.Background(), maria)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["username"] == "" {
		t.Fatalf("expected username taken, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]bool{
		"Passw0rd":  true,
		"password1": false,
		"PASSWORD1": false,
		"Password":  false,
		"Pa1":       false,
	}
	for pw, ok := range cases {
		err := validatePassword(pw, 8)
		if ok && err != nil {
			t.Fatalf("%q: unexpected error %v", pw, err)
		}
		if !ok && err == nil {
			t.Fatalf("%q: expected error", pw)
		}
	}
}

func TestLoginNamespaces(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, _, err := svc.Signup(ctx, maria); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if _, err := svc.CreateStaff(ctx, SignupInput{Username: "admin", Email: "admin@example.com", Password: "Adm1nPass"}); err != nil {
		t.Fatalf("create staff failed: %v", err)
	}

	if _, err := svc.Login(ctx, "maria", "Passw0rd!", true); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("customer on admin login: expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "admin", "Adm1nPass", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("staff on customer login: expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "maria", "wrong", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "ghost", "Passw0rd!", false); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "MARIA", "Passw0rd!", false); err != nil {
		t.Fatalf("case-insensitive customer login failed: %v", err)
	}
	if _, err := svc.Login(ctx, "admin", "Adm1nPass", true); err != nil {
		t.Fatalf("staff login failed: %v", err)
	}
}

func TestAuthenticateAndTerminate(t *testing.T) {
	svc, sessions, _ := newTestService()
	ctx := context.Background()
	if _, _, err := svc.Signup(ctx, maria); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	login, err := svc.Login(ctx, "maria", "Passw0rd!", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	p, err := svc.Authenticate(ctx, login.Token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if p.User.Username != "maria" || p.User.IsStaff {
		t.Fatalf("unexpected principal %+v", p.User)
	}
	if len(sessions.rows) != 1 {
		t.Fatalf("expected one session row, got %d", len(sessions.rows))
	}

	if err := svc.Terminate(ctx, p.SessionID); err != nil {
		t.Fatalf("terminate failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, login.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized after terminate, got %v", err)
	}
	if err := svc.Terminate(ctx, p.SessionID); err != nil {
		t.Fatalf("terminating twice should be a no-op, got %v", err)
	}
}

func TestAuthenticateRejectsForgedAndExpiredTokens(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	if _, _, err := svc.Signup(ctx, maria); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	login, err := svc.Login(ctx, "maria", "Passw0rd!", false)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	other := newSessionManager(svc.sessions.repo, []byte("other-secret"), time.Hour)
	forged, _, err := other.Issue(ctx, domain.User{ID: "user-maria", Username: "maria"})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, forged); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected forged token rejected, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected garbage rejected, got %v", err)
	}

	svc.sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Authenticate(ctx, login.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}
