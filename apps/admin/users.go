package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/user"
)

var errUserExists = errors.New("user already exists")

type newUserArgs struct {
	username   string
	name       string
	email      string
	nationalID string
	isStaff    bool
	roles      string
}

// addUser creates an active user.User
func (cli *commandLine) addUser(ctx context.Context, args newUserArgs) error {
	uname := core.CleanString(args.username, true /* lower */)
	if _, err := cli.usrRepo.GetUserByUsername(ctx, uname); err == nil {
		return errors.Wrap(errUserExists, uname)
	} else if errors.Cause(err) != user.ErrNotFound {
		return err
	}

	nationalID := core.CleanString(args.nationalID)
	if nationalID != "" {
		if err := core.ValidateNationalID(nationalID); err != nil {
			return err
		}
	}
	roles := make([]string, 0)
	for _, role := range strings.Split(args.roles, ",") {
		if role = core.CleanString(role); role == "" {
			continue
		}
		if !isKnownRole(role) {
			return fmt.Errorf("%q: unknown role, expected one of %s", role, strings.Join(user.AllRoles, ", "))
		}
		roles = append(roles, role)
	}

	now := time.Now().UTC()
	usr, err := cli.usrRepo.CreateUser(ctx, user.User{
		Username:  uname,
		Email:     core.CleanString(args.email, true /* lower */),
		Name:      core.CleanString(args.name),
		IsActive:  true,
		IsStaff:   args.isStaff,
		Roles:     roles,
		ExtraInfo: user.ExtraInfo{NationalID: nationalID},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	_, _ = fmt.Fprintf(cli.out, "user %s created with id %d\n", usr.Username, usr.ID)
	return nil
}

func isKnownRole(role string) bool {
	for _, r := range user.AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (cli *commandLine) addCourseRole(ctx context.Context, uname, courseID, role string) error {
	if role != user.CourseRoleInstructor && role != user.CourseRoleStaff {
		return fmt.Errorf("%q: unknown course role, expected %s or %s", role, user.CourseRoleInstructor, user.CourseRoleStaff)
	}
	usr, err := cli.usrRepo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	return cli.usrRepo.AddCourseRole(ctx, user.CourseAccessRole{UserID: usr.ID, CourseID: courseID, Role: role})
}
