package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
)

// RoleHandler serves the role registry. Reads are public; writes sit behind
// the admin:access gate in the router.
type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// Permissions lists the closed permission enumeration. Authenticated callers
// also see what they were granted.
//
// @Summary      List permission tags
// @Tags         roles
// @Produce      json
// @Success      200  {object}  permissionsResponse
// @Router       /permissions [get]
func (h *RoleHandler) Permissions(c echo.Context) error {
	resp := permissionsResponse{Permissions: domain.AllPermissions()}
	if p, ok := domain.PrincipalFromContext(c.Request().Context()); ok {
		resp.Granted = p.Permissions
	}
	return c.JSON(http.StatusOK, resp)
}

// List returns every registered role.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Success      200  {array}  rbac.Role
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.List())
}

// Get returns a single role.
//
// @Summary      Get role
// @Tags         roles
// @Produce      json
// @Param        name  path      string  true  "Role name"
// @Success      200   {object}  rbac.Role
// @Failure      404   {object}  errorResponse
// @Router       /roles/{name} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	role, err := h.service.Get(c.Param("name"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Create registers a custom role.
//
// @Summary      Create role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoleRequest  true  "Role"
// @Success      201   {object}  rbac.Role
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}

	role, err := h.service.Create(c.Request().Context(), p, req.Name, req.Permissions, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

// Update replaces a role's permission set.
//
// @Summary      Update role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string             true  "Role name"
// @Param        body  body      updateRoleRequest  true  "Permissions"
// @Success      200   {object}  rbac.Role
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /roles/{name} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	var req updateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := principal(c)
	if err != nil {
		return err
	}

	role, err := h.service.Update(c.Request().Context(), p, c.Param("name"), req.Permissions, requestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

// Delete removes a custom role. Built-in roles are protected.
//
// @Summary      Delete role
// @Tags         roles
// @Security     BearerAuth
// @Param        name  path  string  true  "Role name"
// @Success      204
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /roles/{name} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("name"), requestMeta(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
