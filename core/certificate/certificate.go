// Package certificate issues course certificates to the external certificates service.
package certificate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/edxapp"
	"github.com/nelc/eoxnelp/core/user"
)

const (
	dateLayout = "2006-01-02"
	validity   = 365 * 24 * time.Hour
)

var (
	ErrGroupCodeNotFound = errors.New("course has no external certificate group code")
	ErrMissingField      = errors.New("missing required certificate field")
)

type (
	// Event is the certificate-created event published by the LMS.
	Event struct {
		CertificateID string    `json:"certificate_id"`
		UserID        int       `json:"user_id" validate:"required"`
		FullName      string    `json:"full_name"`
		CourseID      string    `json:"course_id" validate:"required"`
		Grade         float64   `json:"grade" validate:"gte=0,lte=1"`
		Mode          string    `json:"mode"`
		Status        string    `json:"status"`
		CreatedAt     time.Time `json:"created_at"`
	}

	ExternalUser struct {
		NationalID  string `json:"national_id"`
		EnglishName string `json:"english_name"`
		ArabicName  string `json:"arabic_name"`
	}

	// External is the payload accepted by the external certificates service.
	External struct {
		ID             string       `json:"id"`
		ReferenceID    string       `json:"reference_id"`
		CreatedAt      string       `json:"created_at"`
		ExpirationDate string       `json:"expiration_date"`
		Grade          float64      `json:"grade"`
		IsPassing      bool         `json:"is_passing"`
		GroupCode      string       `json:"group_code"`
		User           ExternalUser `json:"user"`
	}

	// Client posts certificates to the external service.
	Client interface {
		CreateExternalCertificate(ctx context.Context, cert External) (map[string]interface{}, error)
	}
)

// Validate checks that every field the external service requires is set.
func (c External) Validate() error {
	required := map[string]string{
		"id":               c.ID,
		"reference_id":     c.ReferenceID,
		"created_at":       c.CreatedAt,
		"expiration_date":  c.ExpirationDate,
		"group_code":       c.GroupCode,
		"user.national_id": c.User.NationalID,
	}
	for field, value := range required {
		if value == "" {
			return errors.Wrap(ErrMissingField, field)
		}
	}
	return nil
}

// ReferenceID identifies a learner's certificate of a course: "{national_id}~{course_id}".
func ReferenceID(nationalID, courseID string) (string, error) {
	if err := core.ValidateNationalID(nationalID); err != nil {
		return "", err
	}
	return nationalID + "~" + courseID, nil
}

type Generator struct {
	users      *user.Service
	grades     edxapp.Grades
	groupCodes map[string]string
}

func NewGenerator(users *user.Service, grades edxapp.Grades, groupCodes map[string]string) *Generator {
	return &Generator{users: users, grades: grades, groupCodes: groupCodes}
}

// Generate builds the external certificate of an event.
func (g *Generator) Generate(ctx context.Context, event Event) (External, error) {
	usr, err := g.users.GetByID(ctx, event.UserID)
	if err != nil {
		return External{}, errors.Wrap(err, "getting certificate user")
	}
	key, err := edxapp.ParseCourseKey(event.CourseID)
	if err != nil {
		return External{}, err
	}
	courseID := key.String()

	groupCode, ok := g.groupCodes[courseID]
	if !ok {
		return External{}, errors.Wrap(ErrGroupCodeNotFound, courseID)
	}

	// SAML associated usernames start with the national id
	nationalID := usr.Username
	if len(nationalID) > 10 {
		nationalID = nationalID[:10]
	}
	referenceID, err := ReferenceID(nationalID, courseID)
	if err != nil {
		return External{}, errors.Wrap(err, "generating reference id")
	}

	grade, err := g.grades.Read(ctx, usr.Username, key)
	if err != nil {
		return External{}, errors.Wrap(err, "reading course grade")
	}

	created := event.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	id := event.CertificateID
	if id == "" {
		id = uuid.New().String()
	}
	name := event.FullName
	if name == "" {
		name = usr.Name
	}

	return External{
		ID:             id,
		ReferenceID:    referenceID,
		CreatedAt:      created.Format(dateLayout),
		ExpirationDate: created.Add(validity).Format(dateLayout),
		Grade:          event.Grade * 100,
		IsPassing:      grade.Passed,
		GroupCode:      groupCode,
		User: ExternalUser{
			NationalID:  nationalID,
			EnglishName: name,
			ArabicName:  usr.ExtraInfo.ArabicName,
		},
	}, nil
}

// Receiver issues external certificates when the LMS creates one.
type Receiver struct {
	gen    *Generator
	client Client
	logger core.Logger
}

func NewReceiver(gen *Generator, client Client, logger core.Logger) *Receiver {
	return &Receiver{gen: gen, client: client, logger: logger}
}

func (r *Receiver) OnCertificateCreated(ctx context.Context, event Event) (map[string]interface{}, error) {
	cert, err := r.gen.Generate(ctx, event)
	if err != nil {
		return nil, errors.Wrap(err, "generating external certificate")
	}
	resp, err := r.client.CreateExternalCertificate(ctx, cert)
	if err != nil {
		return nil, errors.Wrap(err, "creating external certificate")
	}
	r.logger.Info(fmt.Sprintf("External certificate %s created for %s: %v", cert.ID, cert.ReferenceID, resp))
	return resp, nil
}
