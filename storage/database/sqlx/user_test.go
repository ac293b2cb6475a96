package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelc/eoxnelp/core/user"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

var userColumnNames = []string{
	"id", "username", "email", "name", "is_active", "is_staff", "roles", "national_id", "arabic_name",
	"created_at", "updated_at",
}

func TestUserRepository_CreateUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	now := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("learner", "learner@test.sa", "Learner", true, false, sqlmock.AnyArg(), "1222555888", "", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	usr, err := repo.CreateUser(context.Background(), user.User{
		Username:  "learner",
		Email:     "learner@test.sa",
		Name:      "Learner",
		IsActive:  true,
		ExtraInfo: user.ExtraInfo{NationalID: "1222555888"},
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, usr.ID)
	assert.Equal(t, []string{}, usr.Roles)
}

func TestUserRepository_GetUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE national_id = $1")).
		WithArgs("1222555888").
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow(7, "learner", "learner@test.sa", "Learner", true, false, "{programs:lookup}", "1222555888", "متعلم", now, now))

	usr, err := repo.GetUserByNationalID(ctx, "1222555888")
	require.NoError(t, err)
	assert.Equal(t, 7, usr.ID)
	assert.Equal(t, []string{user.RoleProgramsLookup}, usr.Roles)
	assert.Equal(t, "متعلم", usr.ExtraInfo.ArabicName)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(userColumnNames))
	_, err = repo.GetUserByID(ctx, 99)
	assert.Equal(t, user.ErrNotFound, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("learner").
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow(7, "learner", "learner@test.sa", "Learner", true, true, "{}", "", "", now, now))
	usr, err = repo.GetUserByUsername(ctx, "learner")
	require.NoError(t, err)
	assert.True(t, usr.IsStaff)
	assert.Empty(t, usr.Roles)
}

func TestUserRepository_SocialAuth(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO social_auth")).
		WithArgs(7, user.ProviderSAML, "nafath:1222555888", []byte(`{"uid":1313}`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	sa, err := repo.AddSocialAuth(ctx, user.SocialAuth{
		UserID: 7, Provider: user.ProviderSAML, UID: "nafath:1222555888", ExtraData: map[string]interface{}{"uid": 1313},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sa.ID)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO social_auth")).
		WillReturnError(&pq.Error{Code: pgForeignKeyViolation})
	_, err = repo.AddSocialAuth(ctx, user.SocialAuth{UserID: 99, Provider: user.ProviderSAML})
	assert.Equal(t, user.ErrNotFound, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM social_auth WHERE user_id = $1 AND provider = $2")).
		WithArgs(7, user.ProviderSAML).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "provider", "uid", "extra_data"}).
			AddRow(1, 7, user.ProviderSAML, "nafath:1222555888", []byte(`{"uid": 1313}`)))
	sa, err = repo.GetSocialAuth(ctx, 7, user.ProviderSAML)
	require.NoError(t, err)
	assert.Equal(t, "1313", sa.ExternalUID())

	mock.ExpectQuery(regexp.QuoteMeta("FROM social_auth")).
		WithArgs(8, user.ProviderSAML).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "provider", "uid", "extra_data"}))
	_, err = repo.GetSocialAuth(ctx, 8, user.ProviderSAML)
	assert.Equal(t, user.ErrSocialAuthNotFound, err)
}

func TestUserRepository_CourseRoles(t *testing.T) {
	db, mock := newMock(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	courseID := "course-v1:NELC+P101+2024"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO course_access_roles")).
		WithArgs(7, courseID, user.CourseRoleInstructor).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.AddCourseRole(ctx, user.CourseAccessRole{UserID: 7, CourseID: courseID, Role: user.CourseRoleInstructor}))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM course_access_roles")).
		WithArgs(7, courseID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	ok, err := repo.HasCourseRole(ctx, 7, courseID, user.StudioWriteRoles...)
	require.NoError(t, err)
	assert.True(t, ok)
}
