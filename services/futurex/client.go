// Package futurex is the HTTP client of the Futurex learning platform.
package futurex

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/progress"
)

const enrollmentProgressPath = "/enrollment-progress"

type Client struct {
	http    *resty.Client
	baseURL string
	logger  core.Logger
}

var _ progress.Sink = (*Client)(nil)

func NewClient(conf core.FuturexConfig, logger core.Logger) *Client {
	timeout := conf.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	http := resty.New().
		SetBaseURL(conf.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if conf.AccessToken != "" {
		http.SetAuthToken(conf.AccessToken)
	}
	return &Client{http: http, baseURL: conf.BaseURL, logger: logger}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// EnrollmentProgress posts the learner's progress and returns the decoded answer.
func (c *Client) EnrollmentProgress(ctx context.Context, data progress.Data) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(data).
		SetResult(&result).
		Post(enrollmentProgressPath)
	if err != nil {
		return nil, errors.Wrap(err, "posting enrollment progress")
	}
	if resp.IsError() {
		c.logger.Error(
			fmt.Sprintf("futurex service answered %d for %s", resp.StatusCode(), data.CourseID),
			map[string]interface{}{"body": resp.String()},
		)
		return nil, errors.Errorf("futurex service: %s", resp.Status())
	}
	return result, nil
}
