package lmsedxapp

import (
	"context"
	"strconv"

	"github.com/nelc/eoxnelp/core/edxapp"
)

type coursesPage struct {
	Results    []edxapp.CourseListing `json:"results"`
	Pagination struct {
		Next     *string `json:"next"`
		NumPages int     `json:"num_pages"`
	} `json:"pagination"`
}

// VisibleCourses walks every page of the courses API as seen by username.
func (p *Platform) VisibleCourses(ctx context.Context, username string) ([]edxapp.CourseListing, error) {
	listings := make([]edxapp.CourseListing, 0)
	for page := 1; ; page++ {
		var body coursesPage
		resp, err := p.lms.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"username":  username,
				"page":      strconv.Itoa(page),
				"page_size": strconv.Itoa(coursesPageSize),
			}).
			SetResult(&body).
			Get(coursesPath)
		if err := checkResponse(resp, err, nil, "listing courses"); err != nil {
			return nil, err
		}
		for _, l := range body.Results {
			if l.CourseID == "" {
				l.CourseID = l.ID
			}
			listings = append(listings, l)
		}
		if body.Pagination.Next == nil || len(body.Results) == 0 {
			return listings, nil
		}
	}
}

func (p *Platform) Overview(ctx context.Context, key edxapp.CourseKey) (edxapp.CourseOverview, error) {
	var body struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Effort *string `json:"effort"`
	}
	resp, err := p.lms.R().
		SetContext(ctx).
		SetPathParam("course_id", key.String()).
		SetResult(&body).
		Get(coursePath)
	if err := checkResponse(resp, err, edxapp.ErrCourseNotFound, "getting course overview"); err != nil {
		return edxapp.CourseOverview{}, err
	}
	return edxapp.CourseOverview{ID: body.ID, DisplayName: body.Name, Effort: body.Effort}, nil
}
