package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core/user"
)

// staffOrRoleMiddleware lets through global staff and users holding any of roles.
func staffOrRoleMiddleware(svc *user.Service, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if usr.IsStaff || usr.HasAnyRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// featureMiddleware answers 501 while the named host feature is off.
func featureMiddleware(enabled func(string) bool, feature string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !enabled(feature) {
				return newFeatureDisabledError(feature)
			}
			return next(ctx)
		}
	}
}
