package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/nelc/eoxnelp/core/program"
	"github.com/nelc/eoxnelp/core/saml"
	"github.com/nelc/eoxnelp/core/user"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db         *sql.DB
	usrRepo    user.Repository
	samlRepo   saml.Repository
	samlSvc    *saml.Service
	programSvc *program.Service
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, version, redo, ...)")
	_, _ = fmt.Fprintln(cli.out, "  adduser -username USERNAME [-national-id ID] [-staff] [-roles ROLE,...] - create a user")
	_, _ = fmt.Fprintln(cli.out, "  addcourserole -username USERNAME -course COURSE_ID -role instructor|staff - grant studio access")
	_, _ = fmt.Fprintln(cli.out, "  metadata-get -course COURSE_ID - print the program metadata of a course")
	_, _ = fmt.Fprintln(cli.out, "  metadata-set -course COURSE_ID -file FILE.json -editor USERNAME - set the program metadata of a course")
	_, _ = fmt.Fprintln(cli.out, "  saml-apply -file TEMPLATE.yaml - save a SAML template and apply it to its sites")
	_, _ = fmt.Fprintln(cli.out, "  saml-add-sites -template NAME -sites ID,... - link sites to a SAML template")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserNatID := addUserCmd.String("national-id", "", "The user's national id.")
	addUserStaff := addUserCmd.Bool("staff", false, "Grant global staff access.")
	addUserRoles := addUserCmd.String("roles", "", "Comma separated global roles.")

	addRoleCmd := flag.NewFlagSet("addcourserole", flag.ExitOnError)
	addRoleUname := addRoleCmd.String("username", "", "The user's username.")
	addRoleCourse := addRoleCmd.String("course", "", "The course id.")
	addRoleRole := addRoleCmd.String("role", user.CourseRoleInstructor, "instructor or staff.")

	mdGetCmd := flag.NewFlagSet("metadata-get", flag.ExitOnError)
	mdGetCourse := mdGetCmd.String("course", "", "The course id.")

	mdSetCmd := flag.NewFlagSet("metadata-set", flag.ExitOnError)
	mdSetCourse := mdSetCmd.String("course", "", "The course id.")
	mdSetFile := mdSetCmd.String("file", "", "JSON file holding the metadata.")
	mdSetEditor := mdSetCmd.String("editor", "", "Username the change is attributed to.")

	samlApplyCmd := flag.NewFlagSet("saml-apply", flag.ExitOnError)
	samlApplyFile := samlApplyCmd.String("file", "", "YAML file holding the template.")

	samlSitesCmd := flag.NewFlagSet("saml-add-sites", flag.ExitOnError)
	samlSitesTemplate := samlSitesCmd.String("template", "", "The template name.")
	samlSitesIDs := samlSitesCmd.String("sites", "", "Comma separated site ids.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(ctx, args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, newUserArgs{
			username:   *addUserUname,
			name:       *addUserName,
			email:      *addUserEmail,
			nationalID: *addUserNatID,
			isStaff:    *addUserStaff,
			roles:      *addUserRoles,
		})

	case "addcourserole":
		if err := addRoleCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addRoleUname == "" || *addRoleCourse == "" {
			addRoleCmd.Usage()
			return errHelp
		}
		return cli.addCourseRole(ctx, *addRoleUname, *addRoleCourse, *addRoleRole)

	case "metadata-get":
		if err := mdGetCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *mdGetCourse == "" {
			mdGetCmd.Usage()
			return errHelp
		}
		return cli.getMetadata(ctx, *mdGetCourse)

	case "metadata-set":
		if err := mdSetCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *mdSetCourse == "" || *mdSetFile == "" || *mdSetEditor == "" {
			mdSetCmd.Usage()
			return errHelp
		}
		return cli.setMetadata(ctx, *mdSetCourse, *mdSetFile, *mdSetEditor)

	case "saml-apply":
		if err := samlApplyCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *samlApplyFile == "" {
			samlApplyCmd.Usage()
			return errHelp
		}
		return cli.applySAMLTemplate(ctx, *samlApplyFile)

	case "saml-add-sites":
		if err := samlSitesCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *samlSitesTemplate == "" || *samlSitesIDs == "" {
			samlSitesCmd.Usage()
			return errHelp
		}
		return cli.addSAMLSites(ctx, *samlSitesTemplate, *samlSitesIDs)

	default:
		cli.printUsage()
		return errHelp
	}
}
