package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/rbac"
	"github.com/inventory-platform/inventory-api/internal/core/service"
)

type discardRecorder struct{}

func (discardRecorder) Record(context.Context, domain.AuditEvent) {}

func newRoleHandler() *RoleHandler {
	return NewRoleHandler(service.NewRoleService(rbac.NewRegistry(), nil, discardRecorder{}, zerolog.Nop()))
}

var adminPrincipal = &domain.Principal{ID: "a1", Username: "root", Role: domain.RoleAdmin, Permissions: domain.AllPermissions()}

func TestRoleHandler_List(t *testing.T) {
	e := newTestEcho()
	rec := httptest.NewRecorder()
	if err := newRoleHandler().List(e.NewContext(httptest.NewRequest(http.MethodGet, "/roles", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var roles []rbac.Role
	if err := json.Unmarshal(rec.Body.Bytes(), &roles); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(roles) != 3 || roles[0].Name != domain.RoleAdmin || !roles[0].BuiltIn {
		t.Fatalf("unexpected roles: %+v", roles)
	}
}

func TestRoleHandler_Get(t *testing.T) {
	e := newTestEcho()
	h := newRoleHandler()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/roles/viewer", nil), httptest.NewRecorder())
	c.SetParamNames("name")
	c.SetParamValues("viewer")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/roles/ghost", nil), httptest.NewRecorder())
	c.SetParamNames("name")
	c.SetParamValues("ghost")
	if err := h.Get(c); !errors.Is(err, domain.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestRoleHandler_Create(t *testing.T) {
	e := newTestEcho()
	h := newRoleHandler()

	req := withPrincipal(jsonRequest(http.MethodPost, "/roles", `{"name":"auditor","permissions":["read:logs"]}`), adminPrincipal)
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	req = withPrincipal(jsonRequest(http.MethodPost, "/roles", `{"name":"ADMIN","permissions":["bogus:tag"]}`), adminPrincipal)
	if err := h.Create(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	req = withPrincipal(jsonRequest(http.MethodPost, "/roles", `{"permissions":["read:logs"]}`), adminPrincipal)
	if err := h.Create(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for missing name, got %v", err)
	}
}

func TestRoleHandler_Delete(t *testing.T) {
	e := newTestEcho()
	h := newRoleHandler()

	req := withPrincipal(httptest.NewRequest(http.MethodDelete, "/roles/USER", nil), adminPrincipal)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("name")
	c.SetParamValues("USER")
	if err := h.Delete(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for built-in, got %v", err)
	}
}

func TestRoleHandler_Permissions(t *testing.T) {
	e := newTestEcho()
	h := newRoleHandler()

	rec := httptest.NewRecorder()
	if err := h.Permissions(e.NewContext(httptest.NewRequest(http.MethodGet, "/permissions", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp permissionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Permissions) != len(domain.AllPermissions()) || resp.Granted != nil {
		t.Fatalf("unexpected anonymous response: %+v", resp)
	}

	viewer := &domain.Principal{Username: "vera", Role: domain.RoleViewer, Permissions: []string{"read:devices"}}
	rec = httptest.NewRecorder()
	req := withPrincipal(httptest.NewRequest(http.MethodGet, "/permissions", nil), viewer)
	if err := h.Permissions(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp = permissionsResponse{}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Granted) != 1 {
		t.Fatalf("expected granted permissions, got %+v", resp)
	}
}
