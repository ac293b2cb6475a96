package echoapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/edxapp"
	"github.com/nelc/eoxnelp/core/program"
	"github.com/nelc/eoxnelp/core/user"
)

const (
	codeMissingNationalID = "MISSING_NATIONAL_ID"
	codeInvalidNationalID = "INVALID_NATIONAL_ID"
	codeNoProgramForNatID = "NO_PROGRAM_FOR_NATIONAL_ID"
	contextCourseKey      = "courseKey"

	errMsgMetadataNotFound  = "Program metadata not found"
	errMsgMissingNationalID = "national_id query parameter is required."
	errMsgNoProgram         = "No program found for the given national_id."
)

var errCourseNotFound = echo.NewHTTPError(http.StatusNotFound, "course not found")

type programsApi struct {
	users      *user.Service
	programs   *program.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerProgramsAPI(g *echo.Group, deps ServerDeps) {
	api := programsApi{
		users:      deps.UserSvc,
		programs:   deps.ProgramSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	mg := g.Group("/metadata/:course_id",
		api.studioWriteAccessMiddleware,
		featureMiddleware(deps.Conf.FeatureEnabled, program.FeatureOtherCourseSettings),
	)
	mg.GET("", api.retrieveMetadata)
	mg.POST("", api.updateMetadata)

	g.GET("/program-lookup", api.lookup, staffOrRoleMiddleware(api.users, user.RoleProgramsLookup))
}

// studioWriteAccessMiddleware parses the course key and checks the user may edit the course.
func (api *programsApi) studioWriteAccessMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		raw, err := url.PathUnescape(ctx.Param("course_id"))
		if err != nil {
			raw = ctx.Param("course_id")
		}
		key, err := edxapp.ParseCourseKey(raw)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "course_id", Error: err.Error()})
		}

		usr, err := getContextUser(ctx, api.users)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		ok, err := api.users.HasStudioWriteAccess(ctx.Request().Context(), usr, key.String())
		if err != nil {
			return errors.Wrap(err, "checking studio write access")
		}
		if !ok {
			return errHttpForbidden
		}
		ctx.Set(contextCourseKey, key)
		return next(ctx)
	}
}

func contextCourseID(ctx echo.Context) string {
	key, _ := ctx.Get(contextCourseKey).(edxapp.CourseKey)
	return key.String()
}

// Handlers

func (api *programsApi) retrieveMetadata(ctx echo.Context) error {
	md, err := api.programs.GetMetadata(ctx.Request().Context(), contextCourseID(ctx))
	if err != nil {
		if errors.Cause(err) == edxapp.ErrCourseNotFound {
			return errCourseNotFound
		}
		return errors.Wrap(err, "getting program metadata")
	}
	if len(md) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, errMsgMetadataNotFound)
	}

	data, err := program.DecodeMetadata(md, api.validate, api.translator)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, data.ToMap())
}

func (api *programsApi) updateMetadata(ctx echo.Context) error {
	// decoded by hand so path and query params never end up in the metadata
	raw := make(map[string]interface{})
	if err := json.NewDecoder(ctx.Request().Body).Decode(&raw); err != nil && err != io.EOF {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed program metadata").SetInternal(err)
	}
	if raw == nil { // a literal null body
		raw = make(map[string]interface{})
	}
	data, err := program.DecodeMetadata(raw, api.validate, api.translator)
	if err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.users)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.programs.UpdateMetadata(ctx.Request().Context(), contextCourseID(ctx), data.ToMap(), usr); err != nil {
		if errors.Cause(err) == edxapp.ErrCourseNotFound {
			return errCourseNotFound
		}
		return errors.Wrap(err, "updating program metadata")
	}
	return ctx.JSON(http.StatusCreated, data.ToMap())
}

func (api *programsApi) lookup(ctx echo.Context) error {
	nationalID := ctx.QueryParam("national_id")
	if nationalID == "" {
		return core.NewAPIError(http.StatusBadRequest, codeMissingNationalID, errMsgMissingNationalID)
	}
	if !core.IsValidNationalID(nationalID) {
		return core.NewAPIError(http.StatusUnprocessableEntity, codeInvalidNationalID, core.ErrInvalidNationalID.Error())
	}
	var pagination Pagination
	if err := pagination.Bind(ctx); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	usr, err := api.users.GetByNationalID(reqCtx, nationalID)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return core.NewAPIError(http.StatusNotFound, codeNoProgramForNatID, errMsgNoProgram)
		}
		return errors.Wrap(err, "finding user by national id")
	}

	entries, err := api.programs.Lookup(reqCtx, usr)
	if err != nil {
		return errors.Wrap(err, "looking up programs")
	}
	if len(entries) == 0 {
		return core.NewAPIError(http.StatusNotFound, codeNoProgramForNatID, errMsgNoProgram)
	}

	if pagination.Enabled() {
		page, err := pagination.Paginate(ctx, entries)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, page)
	}
	return ctx.JSON(http.StatusOK, entries)
}
