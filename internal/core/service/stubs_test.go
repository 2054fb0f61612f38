package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
)

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
	err    error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Permissions = append([]string(nil), u.Permissions...)
	return &clone
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, r.err
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		r.nextID++
		copy.ID = "u" + strconv.Itoa(r.nextID)
	}
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// seed stores a user with a real bcrypt hash of password.
func (r *stubUserRepo) seed(t *testing.T, id, username, password, role string, perms []string, active bool) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{ID: id, Username: username, PasswordHash: hash, Role: role, Permissions: perms, IsActive: active}
	r.mu.Lock()
	r.users[id] = cloneUser(u)
	r.mu.Unlock()
	return u
}

type stubRecorder struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (r *stubRecorder) Record(_ context.Context, ev domain.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *stubRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Action)
	}
	return out
}

func (r *stubRecorder) last(t *testing.T) domain.AuditEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		t.Fatalf("expected an audit event, got none")
	}
	return r.events[len(r.events)-1]
}

type stubLimiter struct {
	failures    map[string]int
	maxAttempts int
	err         error
	resets      int
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), maxAttempts: max}
}

func (l *stubLimiter) IsLocked(_ context.Context, username string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return l.failures[username] >= l.maxAttempts, nil
}

func (l *stubLimiter) RegisterFailure(_ context.Context, username string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.failures[username]++
	return l.failures[username] >= l.maxAttempts, nil
}

func (l *stubLimiter) Reset(_ context.Context, username string) error {
	l.resets++
	delete(l.failures, username)
	return l.err
}

type stubRoleRepo struct {
	stored  map[string][]string
	saveErr error
	delErr  error
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{stored: make(map[string][]string)}
}

func (r *stubRoleRepo) List(context.Context) ([]ports.StoredRole, error) {
	out := make([]ports.StoredRole, 0, len(r.stored))
	for name, perms := range r.stored {
		out = append(out, ports.StoredRole{Name: name, Permissions: perms})
	}
	return out, nil
}

func (r *stubRoleRepo) Save(_ context.Context, role ports.StoredRole) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored[role.Name] = role.Permissions
	return nil
}

func (r *stubRoleRepo) Delete(_ context.Context, name string) error {
	if r.delErr != nil {
		return r.delErr
	}
	delete(r.stored, name)
	return nil
}

var errStoreDown = errors.New("store down")
