package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core/user"
)

const (
	userColumns = "id, username, email, name, is_active, is_staff, roles, national_id, arabic_name, created_at, updated_at"

	pgForeignKeyViolation = "23503"
)

type userRow struct {
	ID         int            `db:"id"`
	Username   string         `db:"username"`
	Email      string         `db:"email"`
	Name       string         `db:"name"`
	IsActive   bool           `db:"is_active"`
	IsStaff    bool           `db:"is_staff"`
	Roles      pq.StringArray `db:"roles"`
	NationalID string         `db:"national_id"`
	ArabicName string         `db:"arabic_name"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r userRow) user() user.User {
	return user.User{
		ID:        r.ID,
		Username:  r.Username,
		Email:     r.Email,
		Name:      r.Name,
		IsActive:  r.IsActive,
		IsStaff:   r.IsStaff,
		Roles:     append([]string{}, r.Roles...),
		ExtraInfo: user.ExtraInfo{NationalID: r.NationalID, ArabicName: r.ArabicName},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type socialAuthRow struct {
	ID        int            `db:"id"`
	UserID    int            `db:"user_id"`
	Provider  string         `db:"provider"`
	UID       string         `db:"uid"`
	ExtraData types.JSONText `db:"extra_data"`
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func isForeignKeyViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == pgForeignKeyViolation
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	now := time.Now().UTC()
	if usr.CreatedAt.IsZero() {
		usr.CreatedAt = now
	}
	if usr.UpdatedAt.IsZero() {
		usr.UpdatedAt = now
	}
	if usr.Roles == nil {
		usr.Roles = []string{}
	}

	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO users (username, email, name, is_active, is_staff, roles, national_id, arabic_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		usr.Username, usr.Email, usr.Name, usr.IsActive, usr.IsStaff, pq.Array(usr.Roles),
		usr.ExtraInfo.NationalID, usr.ExtraInfo.ArabicName, usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var row userRow
	q := "SELECT " + userColumns + " FROM users WHERE " + where + " ORDER BY id LIMIT 1"
	if err := repo.db.GetContext(ctx, &row, q, arg); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return row.user(), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getUser(ctx, "id = $1", id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, "username = $1", username)
}

func (repo *userRepository) GetUserByNationalID(ctx context.Context, nationalID string) (user.User, error) {
	return repo.getUser(ctx, "national_id = $1", nationalID)
}

func (repo *userRepository) AddSocialAuth(ctx context.Context, sa user.SocialAuth) (user.SocialAuth, error) {
	extra := types.JSONText("{}")
	if sa.ExtraData != nil {
		var err error
		if extra, err = json.Marshal(sa.ExtraData); err != nil {
			return user.SocialAuth{}, errors.Wrap(err, "encoding social auth extra data")
		}
	}

	err := repo.db.QueryRowxContext(ctx,
		"INSERT INTO social_auth (user_id, provider, uid, extra_data) VALUES ($1, $2, $3, $4) RETURNING id",
		sa.UserID, sa.Provider, sa.UID, extra,
	).Scan(&sa.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return user.SocialAuth{}, user.ErrNotFound
		}
		return user.SocialAuth{}, errors.Wrap(err, "inserting social auth")
	}
	return sa, nil
}

func (repo *userRepository) GetSocialAuth(ctx context.Context, userID int, provider string) (user.SocialAuth, error) {
	var row socialAuthRow
	err := repo.db.GetContext(ctx, &row,
		"SELECT id, user_id, provider, uid, extra_data FROM social_auth WHERE user_id = $1 AND provider = $2 ORDER BY id LIMIT 1",
		userID, provider,
	)
	if err != nil {
		return user.SocialAuth{}, trapNoRowsErr(err, user.ErrSocialAuthNotFound, "getting social auth")
	}

	sa := user.SocialAuth{ID: row.ID, UserID: row.UserID, Provider: row.Provider, UID: row.UID}
	if len(row.ExtraData) > 0 {
		if err := row.ExtraData.Unmarshal(&sa.ExtraData); err != nil {
			return user.SocialAuth{}, errors.Wrap(err, "decoding social auth extra data")
		}
	}
	return sa, nil
}

func (repo *userRepository) AddCourseRole(ctx context.Context, role user.CourseAccessRole) error {
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO course_access_roles (user_id, course_id, role) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		role.UserID, role.CourseID, role.Role,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return user.ErrNotFound
		}
		return errors.Wrap(err, "inserting course access role")
	}
	return nil
}

func (repo *userRepository) HasCourseRole(ctx context.Context, userID int, courseID string, roles ...string) (bool, error) {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM course_access_roles WHERE user_id = $1 AND course_id = $2 AND role = ANY($3))",
		userID, courseID, pq.Array(roles),
	)
	if err != nil {
		return false, errors.Wrap(err, "checking course access roles")
	}
	return exists, nil
}
