package inmemdb

import (
	"context"

	"github.com/nelc/eoxnelp/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.pkCount++
	usr.ID = repo.db.pkCount
	usr.Roles = append([]string(nil), usr.Roles...)
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.Username == username {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByNationalID(_ context.Context, nationalID string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if usr.ExtraInfo.NationalID == nationalID {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) AddSocialAuth(_ context.Context, sa user.SocialAuth) (user.SocialAuth, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[sa.UserID]; !ok {
		return user.SocialAuth{}, user.ErrNotFound
	}
	sa.ID = len(repo.db.socialAuth) + 1
	repo.db.socialAuth = append(repo.db.socialAuth, sa)
	return sa, nil
}

func (repo *userRepository) GetSocialAuth(_ context.Context, userID int, provider string) (user.SocialAuth, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sa := range repo.db.socialAuth {
		if sa.UserID == userID && sa.Provider == provider {
			return sa, nil
		}
	}
	return user.SocialAuth{}, user.ErrSocialAuthNotFound
}

func (repo *userRepository) AddCourseRole(_ context.Context, role user.CourseAccessRole) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, r := range repo.db.courseRoles {
		if r == role {
			return nil
		}
	}
	repo.db.courseRoles = append(repo.db.courseRoles, role)
	return nil
}

func (repo *userRepository) HasCourseRole(_ context.Context, userID int, courseID string, roles ...string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, r := range repo.db.courseRoles {
		if r.UserID != userID || r.CourseID != courseID {
			continue
		}
		for _, role := range roles {
			if r.Role == role {
				return true, nil
			}
		}
	}
	return false, nil
}
