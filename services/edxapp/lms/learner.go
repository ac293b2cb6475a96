package lmsedxapp

import (
	"context"
	"time"

	"github.com/nelc/eoxnelp/core/edxapp"
)

type enrollmentBody struct {
	Created       *time.Time `json:"created"`
	Mode          string     `json:"mode"`
	IsActive      bool       `json:"is_active"`
	User          string     `json:"user"`
	CourseDetails struct {
		CourseID string `json:"course_id"`
	} `json:"course_details"`
}

func (p *Platform) GetEnrollment(ctx context.Context, username string, key edxapp.CourseKey) (edxapp.Enrollment, error) {
	var body *enrollmentBody
	resp, err := p.lms.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"username": username, "course_id": key.String()}).
		SetResult(&body).
		Get(enrollmentPath)
	if err := checkResponse(resp, err, edxapp.ErrEnrollmentNotFound, "getting enrollment"); err != nil {
		return edxapp.Enrollment{}, err
	}
	// the enrollment API answers 200 with an empty body for unknown enrollments
	if body == nil || body.User == "" {
		return edxapp.Enrollment{}, edxapp.ErrEnrollmentNotFound
	}

	e := edxapp.Enrollment{
		Username: body.User,
		CourseID: body.CourseDetails.CourseID,
		Mode:     body.Mode,
		IsActive: body.IsActive,
	}
	if body.Created != nil {
		e.Created = *body.Created
	}
	return e, nil
}

func (p *Platform) IsEnrolled(ctx context.Context, username string, key edxapp.CourseKey) (bool, error) {
	e, err := p.GetEnrollment(ctx, username, key)
	switch err {
	case nil:
		return e.IsActive, nil
	case edxapp.ErrEnrollmentNotFound:
		return false, nil
	default:
		return false, err
	}
}

// Read returns the learner's course grade; a learner without grade gets a failing zero grade.
func (p *Platform) Read(ctx context.Context, username string, key edxapp.CourseKey) (edxapp.CourseGrade, error) {
	var grades []edxapp.CourseGrade
	resp, err := p.lms.R().
		SetContext(ctx).
		SetPathParam("course_id", key.String()).
		SetQueryParam("username", username).
		SetResult(&grades).
		Get(gradesPath)
	if err := checkResponse(resp, err, edxapp.ErrCourseNotFound, "reading course grade"); err != nil {
		return edxapp.CourseGrade{}, err
	}
	for _, g := range grades {
		if g.Username == username {
			return g, nil
		}
	}
	return edxapp.CourseGrade{Username: username, CourseID: key.String()}, nil
}

func (p *Platform) Summary(ctx context.Context, username string, key edxapp.CourseKey) (edxapp.CompletionSummary, error) {
	var body struct {
		CompletionSummary edxapp.CompletionSummary `json:"completion_summary"`
	}
	resp, err := p.lms.R().
		SetContext(ctx).
		SetPathParam("course_id", key.String()).
		SetQueryParam("username", username).
		SetResult(&body).
		Get(progressPath)
	if err := checkResponse(resp, err, edxapp.ErrCourseNotFound, "getting completion summary"); err != nil {
		return edxapp.CompletionSummary{}, err
	}
	return body.CompletionSummary, nil
}
