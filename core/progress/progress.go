// Package progress reports learners' course progress to the Futurex platform.
package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/edxapp"
	"github.com/nelc/eoxnelp/core/program"
	"github.com/nelc/eoxnelp/core/user"
)

const logPrefix = "send_futurex_progress --- "

type (
	// Data is the enrollment progress payload expected by Futurex.
	Data struct {
		CourseID             string   `json:"courseId"`
		UserID               *string  `json:"userId,omitempty"`
		ApproxTotalCourseHrs *int     `json:"approxTotalCourseHrs"`
		OverallProgress      *float64 `json:"overallProgress"`
		MembershipState      bool     `json:"membershipState"`
		EnrolledAt           string   `json:"enrolledAt"`
		IsCompleted          bool     `json:"isCompleted"`
	}

	// Sink receives progress data.
	Sink interface {
		EnrollmentProgress(ctx context.Context, data Data) (map[string]interface{}, error)
		BaseURL() string
	}
)

type Generator struct {
	users      *user.Service
	catalog    edxapp.CourseCatalog
	enrolls    edxapp.Enrollments
	completion edxapp.Completion
	conv       *program.Converter
	logger     core.Logger
}

func NewGenerator(users *user.Service, platform edxapp.Platform, conv *program.Converter, logger core.Logger) *Generator {
	return &Generator{
		users:      users,
		catalog:    platform.Catalog,
		enrolls:    platform.Enrollments,
		completion: platform.Completion,
		conv:       conv,
		logger:     logger,
	}
}

// Generate collects the progress of usr in a course.
// A user without a SAML social auth record is reported without userId.
func (g *Generator) Generate(ctx context.Context, usr user.User, courseID string, passing bool) (Data, error) {
	key, err := edxapp.ParseCourseKey(courseID)
	if err != nil {
		return Data{}, err
	}

	summary, err := g.completion.Summary(ctx, usr.Username, key)
	if err != nil {
		return Data{}, errors.Wrap(err, "getting completion summary")
	}
	enrollment, err := g.enrolls.GetEnrollment(ctx, usr.Username, key)
	if err != nil {
		return Data{}, errors.Wrap(err, "getting enrollment")
	}
	overview, err := g.catalog.Overview(ctx, key)
	if err != nil {
		return Data{}, errors.Wrap(err, "getting course overview")
	}

	data := Data{
		CourseID:             key.String(),
		ApproxTotalCourseHrs: g.conv.Hours(overview.Effort),
		OverallProgress:      overallProgress(summary),
		MembershipState:      enrollment.IsActive,
		EnrolledAt:           enrollment.Created.UTC().Format(time.RFC3339Nano),
		IsCompleted:          passing,
	}

	sa, err := g.users.GetSocialAuth(ctx, usr, user.ProviderSAML)
	switch errors.Cause(err) {
	case nil:
		uid := sa.ExternalUID()
		data.UserID = &uid
		g.logger.Info(fmt.Sprintf("%sSuccessful extraction of progress_enrollment_data: %+v", logPrefix, data))
	case user.ErrSocialAuthNotFound:
		g.logger.Error(
			fmt.Sprintf("User:%s doesn't have a social auth record, therefore is not possible to push progress.", usr.Username),
			usr,
		)
	default:
		return Data{}, errors.Wrap(err, "getting social auth record")
	}
	return data, nil
}

func overallProgress(summary edxapp.CompletionSummary) *float64 {
	if summary.Empty() {
		return nil
	}
	total := summary.CompleteCount + summary.IncompleteCount + summary.LockedCount
	p := float64(summary.CompleteCount) / float64(total)
	return &p
}
