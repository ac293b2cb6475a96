// Package certsvc is the HTTP client of the external certificates service.
package certsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/certificate"
)

const createPath = "/certificates"

type Client struct {
	http   *resty.Client
	logger core.Logger
}

var _ certificate.Client = (*Client)(nil)

// NewClient builds a basic-auth client sending the configured extra headers with every request.
func NewClient(conf core.CertificatesConfig, logger core.Logger) *Client {
	timeout := conf.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	http := resty.New().
		SetBaseURL(conf.BaseURL).
		SetBasicAuth(conf.User, conf.Password).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeaders(conf.ExtraHeaders)
	return &Client{http: http, logger: logger}
}

// Header returns the value of a default request header.
func (c *Client) Header(name string) string {
	return c.http.Header.Get(name)
}

func (c *Client) CreateExternalCertificate(ctx context.Context, cert certificate.External) (map[string]interface{}, error) {
	if err := cert.Validate(); err != nil {
		return nil, err
	}

	var result map[string]interface{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(cert).
		SetResult(&result).
		Post(createPath)
	if err != nil {
		return nil, errors.Wrap(err, "posting external certificate")
	}
	if resp.IsError() {
		c.logger.Error(
			fmt.Sprintf("external certificates service answered %d for %s", resp.StatusCode(), cert.ReferenceID),
			map[string]interface{}{"body": resp.String()},
		)
		return nil, errors.Errorf("external certificates service: %s", resp.Status())
	}
	return result, nil
}
