package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/user"
	"github.com/nelc/eoxnelp/storage/database/inmem"
	"github.com/nelc/eoxnelp/tests"
)

func setup() (*user.Service, user.Repository) {
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	return user.NewService(repo), repo
}

func TestService_GetByUsername(t *testing.T) {
	svc, repo := setup()
	usr := testutil.CreateUser(t, repo, "Learner", "learner", "", false)

	got, err := svc.GetByUsername(context.Background(), "  LEARNER ")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.GetByUsername(context.Background(), "nobody")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestService_GetByNationalID(t *testing.T) {
	svc, repo := setup()
	usr := testutil.CreateUser(t, repo, "Learner", "learner", "1234567890", false)

	tests := []struct {
		name       string
		nationalID string
		wantID     int
		wantErr    error
	}{
		{name: "found", nationalID: "1234567890", wantID: usr.ID},
		{name: "surrounding spaces", nationalID: " 1234567890 ", wantID: usr.ID},
		{name: "too short", nationalID: "123", wantErr: core.ErrInvalidNationalID},
		{name: "not digits", nationalID: "12345abcde", wantErr: core.ErrInvalidNationalID},
		{name: "unknown", nationalID: "0987654321", wantErr: user.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.GetByNationalID(context.Background(), tt.nationalID)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestService_HasStudioWriteAccess(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	courseID := "course-v1:NELC+P101+2024"

	staff := testutil.CreateUser(t, repo, "Staff", "staff", "", true)
	instructor := testutil.CreateUser(t, repo, "Instructor", "instructor", "", false)
	courseStaff := testutil.CreateUser(t, repo, "Course Staff", "cstaff", "", false)
	beta := testutil.CreateUser(t, repo, "Beta", "beta", "", false)
	learner := testutil.CreateUser(t, repo, "Learner", "learner", "", false)

	require.NoError(t, repo.AddCourseRole(ctx, user.CourseAccessRole{UserID: instructor.ID, CourseID: courseID, Role: user.CourseRoleInstructor}))
	require.NoError(t, repo.AddCourseRole(ctx, user.CourseAccessRole{UserID: courseStaff.ID, CourseID: courseID, Role: user.CourseRoleStaff}))
	require.NoError(t, repo.AddCourseRole(ctx, user.CourseAccessRole{UserID: beta.ID, CourseID: courseID, Role: "beta_testers"}))

	tests := []struct {
		name     string
		usr      user.User
		courseID string
		want     bool
	}{
		{name: "global staff", usr: staff, courseID: courseID, want: true},
		{name: "global staff any course", usr: staff, courseID: "course-v1:NELC+OTHER+2024", want: true},
		{name: "instructor", usr: instructor, courseID: courseID, want: true},
		{name: "course staff", usr: courseStaff, courseID: courseID, want: true},
		{name: "instructor of another course", usr: instructor, courseID: "course-v1:NELC+OTHER+2024"},
		{name: "beta tester", usr: beta, courseID: courseID},
		{name: "learner", usr: learner, courseID: courseID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.HasStudioWriteAccess(ctx, tt.usr, tt.courseID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_CanLookupPrograms(t *testing.T) {
	svc, _ := setup()

	assert.True(t, svc.CanLookupPrograms(user.User{IsStaff: true}))
	assert.True(t, svc.CanLookupPrograms(user.User{Roles: []string{user.RoleProgramsLookup}}))
	assert.False(t, svc.CanLookupPrograms(user.User{Roles: []string{user.RoleEventsPublisher}}))
	assert.False(t, svc.CanLookupPrograms(user.User{}))
}

func TestService_GetSocialAuth(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Learner", "learner", "", false)

	_, err := svc.GetSocialAuth(ctx, usr, user.ProviderSAML)
	assert.Equal(t, user.ErrSocialAuthNotFound, errors.Cause(err))

	_, err = repo.AddSocialAuth(ctx, user.SocialAuth{
		UserID:    usr.ID,
		Provider:  user.ProviderSAML,
		UID:       "nafath:1313",
		ExtraData: map[string]interface{}{"uid": float64(1313)},
	})
	require.NoError(t, err)

	sa, err := svc.GetSocialAuth(ctx, usr, user.ProviderSAML)
	require.NoError(t, err)
	assert.Equal(t, "1313", sa.ExternalUID())
}

func TestSocialAuth_ExternalUID(t *testing.T) {
	tests := []struct {
		name  string
		extra map[string]interface{}
		want  string
	}{
		{name: "string", extra: map[string]interface{}{"uid": "abc"}, want: "abc"},
		{name: "int", extra: map[string]interface{}{"uid": 42}, want: "42"},
		{name: "float", extra: map[string]interface{}{"uid": float64(1313)}, want: "1313"},
		{name: "empty string", extra: map[string]interface{}{"uid": ""}, want: "fallback"},
		{name: "missing", extra: nil, want: "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sa := user.SocialAuth{UID: "fallback", ExtraData: tt.extra}
			assert.Equal(t, tt.want, sa.ExternalUID())
		})
	}
}
