package echoapi

import (
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nelc/eoxnelp/core"
)

const (
	pageParam     = "page"
	pageSizeParam = "page_size"
	maxPageSize   = 100
)

// Pagination binds the optional page & page_size query params.
type Pagination struct {
	Page     int
	PageSize int
}

// Enabled reports whether the client asked for a paginated response.
func (p Pagination) Enabled() bool {
	return p.PageSize > 0
}

func (p *Pagination) Bind(ctx echo.Context) error {
	var fldErrs []core.FieldError
	p.Page = 1
	if raw := ctx.QueryParam(pageParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fldErrs = append(fldErrs, core.FieldError{Field: pageParam, Error: "a valid integer is required"})
		} else {
			p.Page = n
		}
	}
	if raw := ctx.QueryParam(pageSizeParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fldErrs = append(fldErrs, core.FieldError{Field: pageSizeParam, Error: "a valid integer is required"})
		} else if n > maxPageSize {
			p.PageSize = maxPageSize
		} else {
			p.PageSize = n
		}
	}
	if fldErrs != nil {
		return core.NewValidationError(nil, fldErrs...)
	}
	return nil
}

// Page is a paginated list response.
type Page struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  []interface{} `json:"results"`
}

// Paginate cuts items down to the requested page, linking the neighbour pages from the request URL.
func (p Pagination) Paginate(ctx echo.Context, items []interface{}) (Page, error) {
	count := len(items)
	numPages := (count + p.PageSize - 1) / p.PageSize
	if numPages == 0 {
		numPages = 1
	}
	if p.Page > numPages {
		return Page{}, errInvalidPage
	}

	start := (p.Page - 1) * p.PageSize
	end := start + p.PageSize
	if end > count {
		end = count
	}
	page := Page{Count: count, Results: items[start:end]}
	if p.Page < numPages {
		page.Next = pageURL(ctx, p.Page+1)
	}
	if p.Page > 1 {
		page.Previous = pageURL(ctx, p.Page-1)
	}
	return page, nil
}

func pageURL(ctx echo.Context, page int) *string {
	req := ctx.Request()
	u := url.URL{Scheme: ctx.Scheme(), Host: req.Host, Path: req.URL.Path}
	q := req.URL.Query()
	if page == 1 {
		q.Del(pageParam)
	} else {
		q.Set(pageParam, strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}
