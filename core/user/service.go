package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrSocialAuthNotFound = errors.New("social auth record not found")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		GetUserByNationalID(ctx context.Context, nationalID string) (User, error)
		AddSocialAuth(ctx context.Context, sa SocialAuth) (SocialAuth, error)
		GetSocialAuth(ctx context.Context, userID int, provider string) (SocialAuth, error)
		AddCourseRole(ctx context.Context, role CourseAccessRole) error
		HasCourseRole(ctx context.Context, userID int, courseID string, roles ...string) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

// GetByNationalID resolves a national id to its single user account.
func (svc *Service) GetByNationalID(ctx context.Context, nationalID string) (User, error) {
	nationalID = core.CleanString(nationalID)
	if err := core.ValidateNationalID(nationalID); err != nil {
		return User{}, err
	}
	return svc.repo.GetUserByNationalID(ctx, nationalID)
}

func (svc *Service) GetSocialAuth(ctx context.Context, usr User, provider string) (SocialAuth, error) {
	return svc.repo.GetSocialAuth(ctx, usr.ID, provider)
}

// HasStudioWriteAccess reports whether usr may edit the course in Studio:
// global staff, or an instructor/staff access role on the course.
func (svc *Service) HasStudioWriteAccess(ctx context.Context, usr User, courseID string) (bool, error) {
	if usr.IsStaff {
		return true, nil
	}
	ok, err := svc.repo.HasCourseRole(ctx, usr.ID, courseID, StudioWriteRoles...)
	if err != nil {
		return false, errors.Wrap(err, "checking course roles")
	}
	return ok, nil
}

// CanLookupPrograms reports whether usr may list program lookup records of other learners.
func (svc *Service) CanLookupPrograms(usr User) bool {
	return usr.IsStaff || usr.HasAnyRole(RoleProgramsLookup)
}
