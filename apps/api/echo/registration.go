package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core/registration"
)

type registrationApi struct {
	registry *registration.Registry
}

func registerRegistrationAPI(g *echo.Group, deps ServerDeps) {
	api := registrationApi{registry: deps.Registry}
	g.GET("/fields", api.listFields)
	g.GET("/fields/:name", api.retrieveField)
}

// requestLanguage prefers the lang query param over the Accept-Language header.
func requestLanguage(ctx echo.Context) string {
	if lang := ctx.QueryParam("lang"); lang != "" {
		return lang
	}
	return ctx.Request().Header.Get("Accept-Language")
}

func requiredParam(ctx echo.Context) bool {
	return ctx.QueryParam("required") != "false"
}

func (api *registrationApi) listFields(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.registry.Form(requestLanguage(ctx), requiredParam(ctx)))
}

func (api *registrationApi) retrieveField(ctx echo.Context) error {
	fld, err := api.registry.Field(ctx.Param("name"), requestLanguage(ctx), requiredParam(ctx))
	if err != nil {
		if errors.Cause(err) == registration.ErrUnknownField {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return err
	}
	return ctx.JSON(http.StatusOK, fld)
}
