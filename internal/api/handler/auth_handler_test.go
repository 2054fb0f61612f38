package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	return s.loginFn(ctx, in)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withPrincipal(req *http.Request, p *domain.Principal) *http.Request {
	return req.WithContext(domain.ContextWithPrincipal(req.Context(), p))
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			if in.Username != "alice" || in.Password != "correct-horse" {
				t.Fatalf("unexpected credentials: %+v", in)
			}
			if in.UserAgent != "test-agent" {
				t.Fatalf("user agent not forwarded: %q", in.UserAgent)
			}
			return &ports.LoginResult{
				Token:     "signed.jwt.value",
				Principal: &domain.Principal{ID: "u1", Username: "alice", Role: domain.RoleViewer, Permissions: []string{"read:devices"}},
				ExpiresIn: 24 * time.Hour,
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/login", `{"username":"alice","password":"correct-horse"}`)
	req.Header.Set("User-Agent", "test-agent")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
		User      struct {
			ID          string   `json:"id"`
			Username    string   `json:"username"`
			Role        string   `json:"role"`
			Permissions []string `json:"permissions"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "signed.jwt.value" || resp.ExpiresIn != 86400 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.User.ID != "u1" || resp.User.Role != domain.RoleViewer || len(resp.User.Permissions) != 1 {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestAuthHandler_Login_PropagatesErrors(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c := e.NewContext(jsonRequest(http.MethodPost, "/login", `{"username":"alice","password":"nope"}`), httptest.NewRecorder())
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_BadPayload(t *testing.T) {
	e := newTestEcho()
	var got *ports.LoginInput
	stub := &stubAuthService{
		loginFn: func(_ context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
			got = &in
			return nil, domain.Invalidf("username and password are required")
		},
	}
	h := NewAuthHandler(stub)

	req := jsonRequest(http.MethodPost, "/login", `{"username":`)
	req.Header.Set("User-Agent", "test-agent")
	c := e.NewContext(req, httptest.NewRecorder())
	if err := h.Login(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got == nil {
		t.Fatalf("unreadable body never reached the auth service")
	}
	if got.Username != "" || got.Password != "" || got.UserAgent != "test-agent" {
		t.Fatalf("unexpected login input: %+v", *got)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/me", nil), &domain.Principal{ID: "u1", Username: "alice", Role: domain.RoleUser})
	rec := httptest.NewRecorder()
	if err := h.Me(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"username":"alice"`) || !strings.Contains(rec.Body.String(), `"permissions":[]`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	if err := h.Me(e.NewContext(httptest.NewRequest(http.MethodGet, "/me", nil), httptest.NewRecorder())); !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}
