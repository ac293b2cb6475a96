// Package edxapp declares the host LMS collaborators the plugin talks to.
// Concrete backends live under services/edxapp and are picked at startup.
package edxapp

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// OtherCourseSettingsKey is the advanced-settings field holding free-form plugin data.
const OtherCourseSettingsKey = "other_course_settings"

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

type (
	// CourseBlock is the root block of a course as stored in the content store.
	CourseBlock struct {
		ID                  CourseKey              `json:"id"`
		DisplayName         string                 `json:"display_name"`
		OtherCourseSettings map[string]interface{} `json:"other_course_settings"`
		EditedBy            int                    `json:"edited_by,omitempty"`
		EditedOn            time.Time              `json:"edited_on,omitempty"`
	}

	// CourseListing is a course summary as returned by the LMS courses API.
	CourseListing struct {
		ID       string  `json:"id"`
		CourseID string  `json:"course_id"`
		Name     string  `json:"name"`
		Number   string  `json:"number,omitempty"`
		Org      string  `json:"org,omitempty"`
		Start    *string `json:"start"`
		End      *string `json:"end"`
		Effort   *string `json:"effort"`
	}

	CourseOverview struct {
		ID          string  `json:"id"`
		DisplayName string  `json:"display_name"`
		Effort      *string `json:"effort"`
	}

	Enrollment struct {
		Username string    `json:"username"`
		CourseID string    `json:"course_id"`
		Mode     string    `json:"mode"`
		IsActive bool      `json:"is_active"`
		Created  time.Time `json:"created"`
	}

	CourseGrade struct {
		Username string  `json:"username"`
		CourseID string  `json:"course_id"`
		Passed   bool    `json:"passed"`
		Percent  float64 `json:"percent"`
	}

	CompletionSummary struct {
		CompleteCount   int `json:"complete_count"`
		IncompleteCount int `json:"incomplete_count"`
		LockedCount     int `json:"locked_count"`
	}
)

type (
	// ContentStore reads and persists course root blocks.
	ContentStore interface {
		GetCourse(ctx context.Context, key CourseKey) (CourseBlock, error)
		UpdateItem(ctx context.Context, course CourseBlock, editorID int) error
	}

	CourseCatalog interface {
		// VisibleCourses lists the courses the given user is allowed to see.
		VisibleCourses(ctx context.Context, username string) ([]CourseListing, error)
		Overview(ctx context.Context, key CourseKey) (CourseOverview, error)
	}

	Enrollments interface {
		IsEnrolled(ctx context.Context, username string, key CourseKey) (bool, error)
		GetEnrollment(ctx context.Context, username string, key CourseKey) (Enrollment, error)
	}

	Grades interface {
		Read(ctx context.Context, username string, key CourseKey) (CourseGrade, error)
	}

	Completion interface {
		Summary(ctx context.Context, username string, key CourseKey) (CompletionSummary, error)
	}

	// Platform bundles every host collaborator.
	Platform struct {
		ContentStore ContentStore
		Catalog      CourseCatalog
		Enrollments  Enrollments
		Grades       Grades
		Completion   Completion
	}
)

// Empty reports whether no unit of the course has been counted yet.
func (cs CompletionSummary) Empty() bool {
	return cs.CompleteCount+cs.IncompleteCount+cs.LockedCount == 0
}
