package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
)

// principal returns the identity attached by the auth middleware. Handlers
// behind Required() always have one; a missing principal means the route was
// wired without authentication and is treated as unauthenticated.
func principal(c echo.Context) (*domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(c.Request().Context())
	if !ok {
		return nil, domain.ErrMissingCredentials
	}
	return p, nil
}

// requestMeta collects the caller details recorded in audit events.
func requestMeta(c echo.Context) ports.RequestMeta {
	return ports.RequestMeta{
		SourceAddress: c.RealIP(),
		UserAgent:     c.Request().UserAgent(),
	}
}

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Invalidf("invalid payload")
	}
	return c.Validate(req)
}
