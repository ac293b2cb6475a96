package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/certificate"
	"github.com/nelc/eoxnelp/core/progress"
	"github.com/nelc/eoxnelp/core/user"
)

const (
	featureFuturexProgress = "FUTUREX_PROGRESS"
	featureExternalCerts   = "EXTERNAL_CERTIFICATES"
)

type eventsApi struct {
	certificates *certificate.Receiver
	progress     *progress.Dispatcher
	validate     *validator.Validate
}

func registerEventsAPI(g *echo.Group, deps ServerDeps) {
	api := eventsApi{
		certificates: deps.Certificates,
		progress:     deps.Progress,
		validate:     deps.Validate,
	}
	g.Use(staffOrRoleMiddleware(deps.UserSvc, user.RoleEventsPublisher))
	g.POST("/block-completed", api.blockCompleted)
	g.POST("/certificate-created", api.certificateCreated)
}

func (api *eventsApi) blockCompleted(ctx echo.Context) error {
	if api.progress == nil {
		return newFeatureDisabledError(featureFuturexProgress)
	}
	var event progress.BlockCompletedEvent
	if err := ctx.Bind(&event); err != nil {
		return errors.Wrap(err, "binding to block completed event")
	}
	if err := api.validate.Struct(event); err != nil {
		return err
	}
	if err := api.progress.BlockCompleted(ctx.Request().Context(), event); err != nil {
		if errors.Cause(err) == progress.ErrDispatcherClosed {
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		}
		return errors.Wrap(err, "queueing block completed event")
	}
	return ctx.NoContent(http.StatusAccepted)
}

func (api *eventsApi) certificateCreated(ctx echo.Context) error {
	if api.certificates == nil {
		return newFeatureDisabledError(featureExternalCerts)
	}
	var event certificate.Event
	if err := ctx.Bind(&event); err != nil {
		return errors.Wrap(err, "binding to certificate created event")
	}
	if err := api.validate.Struct(event); err != nil {
		return err
	}
	resp, err := api.certificates.OnCertificateCreated(ctx.Request().Context(), event)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		case certificate.ErrGroupCodeNotFound, certificate.ErrMissingField, core.ErrInvalidNationalID:
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return err
	}
	return ctx.JSON(http.StatusCreated, resp)
}
