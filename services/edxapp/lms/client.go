// Package lmsedxapp talks to a running Open edX LMS and Studio over their REST APIs.
package lmsedxapp

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/edxapp"
)

const (
	coursesPath          = "/api/courses/v1/courses/"
	coursePath           = "/api/courses/v1/courses/{course_id}/"
	enrollmentPath       = "/api/enrollment/v1/enrollment/{username},{course_id}"
	gradesPath           = "/api/grades/v1/courses/{course_id}/"
	progressPath         = "/api/course_home/v1/progress/{course_id}"
	advancedSettingsPath = "/api/contentstore/v0/advanced_settings/{course_id}"

	coursesPageSize = 100
)

// Platform implements every edxapp interface on top of the LMS and Studio APIs.
type Platform struct {
	lms    *resty.Client
	cms    *resty.Client
	logger core.Logger
}

var (
	_ edxapp.ContentStore  = (*Platform)(nil)
	_ edxapp.CourseCatalog = (*Platform)(nil)
	_ edxapp.Enrollments   = (*Platform)(nil)
	_ edxapp.Grades        = (*Platform)(nil)
	_ edxapp.Completion    = (*Platform)(nil)
)

func New(conf core.EdxappConfig, logger core.Logger) *Platform {
	return &Platform{
		lms:    newClient(conf.LMSBaseURL, conf),
		cms:    newClient(conf.CMSBaseURL, conf),
		logger: logger,
	}
}

func newClient(baseURL string, conf core.EdxappConfig) *resty.Client {
	timeout := conf.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if conf.AccessToken != "" {
		c.SetAuthScheme("JWT").SetAuthToken(conf.AccessToken)
	}
	return c
}

// Edxapp exposes the platform through every host interface.
func (p *Platform) Edxapp() edxapp.Platform {
	return edxapp.Platform{
		ContentStore: p,
		Catalog:      p,
		Enrollments:  p,
		Grades:       p,
		Completion:   p,
	}
}

// checkResponse maps transport failures and error statuses to errors; 404 becomes notFound.
func checkResponse(resp *resty.Response, err error, notFound error, action string) error {
	if err != nil {
		return errors.Wrap(err, action)
	}
	if resp.StatusCode() == http.StatusNotFound && notFound != nil {
		return notFound
	}
	if resp.IsError() {
		return errors.Errorf("%s: %s", action, resp.Status())
	}
	return nil
}
