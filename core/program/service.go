// Package program assembles the program lookup representation of courses
// and manages the program metadata stored in course settings.
package program

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/edxapp"
	"github.com/nelc/eoxnelp/core/user"
)

type Service struct {
	store       edxapp.ContentStore
	catalog     edxapp.CourseCatalog
	enrollments edxapp.Enrollments
	conv        *Converter
	records     *RecordValidator
	logger      core.Logger
}

func NewService(platform edxapp.Platform, conv *Converter, records *RecordValidator, logger core.Logger) *Service {
	return &Service{
		store:       platform.ContentStore,
		catalog:     platform.Catalog,
		enrollments: platform.Enrollments,
		conv:        conv,
		records:     records,
		logger:      logger,
	}
}

// GetMetadata returns the program metadata of a course, an empty map when none is stored.
func (svc *Service) GetMetadata(ctx context.Context, courseID string) (map[string]interface{}, error) {
	key, err := edxapp.ParseCourseKey(courseID)
	if err != nil {
		return nil, err
	}
	course, err := svc.store.GetCourse(ctx, key)
	if err != nil {
		return nil, errors.Wrap(err, "getting course")
	}

	switch md := course.OtherCourseSettings[MetadataKey].(type) {
	case map[string]interface{}:
		return md, nil
	case nil:
		return map[string]interface{}{}, nil
	default:
		svc.logger.Warn(fmt.Sprintf("course %s holds a malformed %s of type %T", courseID, MetadataKey, md))
		return map[string]interface{}{}, nil
	}
}

// UpdateMetadata overwrites the program metadata of a course and attributes the write to actor.
// Concurrent writers are not serialized, the last write wins.
func (svc *Service) UpdateMetadata(ctx context.Context, courseID string, data map[string]interface{}, actor user.User) error {
	key, err := edxapp.ParseCourseKey(courseID)
	if err != nil {
		return err
	}
	course, err := svc.store.GetCourse(ctx, key)
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	if course.OtherCourseSettings == nil {
		course.OtherCourseSettings = make(map[string]interface{})
	}
	course.OtherCourseSettings[MetadataKey] = data
	course.EditedBy = actor.ID
	course.EditedOn = time.Now().UTC()

	if err = svc.store.UpdateItem(ctx, course, actor.ID); err != nil {
		return errors.Wrap(err, "updating course")
	}
	return nil
}

// LookupRepresentation joins a course listing with its program metadata.
func (svc *Service) LookupRepresentation(ctx context.Context, listing edxapp.CourseListing) (LookupRecord, error) {
	md, err := svc.GetMetadata(ctx, listing.ID)
	if err != nil {
		return LookupRecord{}, errors.Wrap(err, "getting program metadata")
	}

	dateStart := svc.conv.ISODate(listing.Start)
	dateEnd := svc.conv.ISODate(listing.End)
	activityID := intValue(md, "type_of_activity")

	var activity *string
	if activityID != nil {
		activity = ActivityLabel(*activityID)
	}
	duration := 0
	if hours := svc.conv.Hours(listing.Effort); hours != nil {
		duration = *hours
	}
	name := listing.Name
	code := listing.CourseID

	return LookupRecord{
		ProgramName:      &name,
		ProgramCode:      stringValue(md, "program_code"),
		TrainingLocation: TrainingLocation,
		DateStart:        dateStart,
		DateStartHijri:   svc.conv.Hijri(dateStart),
		DateEnd:          dateEnd,
		DateEndHijri:     svc.conv.Hijri(dateEnd),
		TrainerType:      DefaultTrainerType,
		TypeOfActivity:   activity,
		TypeOfActivityID: activityID,
		Unit:             DurationUnit,
		Duration:         duration,
		Mandatory:        stringValue(md, "mandatory"),
		ProgramApprove:   stringValue(md, "program_approve"),
		Code:             &code,
	}, nil
}

// Lookup lists the lookup entries of the courses usr can see and is enrolled in.
// Each entry is either a LookupRecord or, when the record fails validation, a LookupError.
func (svc *Service) Lookup(ctx context.Context, usr user.User) ([]interface{}, error) {
	listings, err := svc.catalog.VisibleCourses(ctx, usr.Username)
	if err != nil {
		return nil, errors.Wrap(err, "listing visible courses")
	}

	entries := make([]interface{}, 0, len(listings))
	for _, listing := range listings {
		key, err := edxapp.ParseCourseKey(listing.CourseID)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("skipping course listing with invalid id %q", listing.CourseID), err)
			continue
		}
		enrolled, err := svc.enrollments.IsEnrolled(ctx, usr.Username, key)
		if err != nil {
			return nil, errors.Wrapf(err, "checking enrollment in %s", listing.CourseID)
		}
		if !enrolled {
			continue
		}

		record, err := svc.LookupRepresentation(ctx, listing)
		if err != nil {
			return nil, errors.Wrapf(err, "assembling lookup record of %s", listing.CourseID)
		}
		details, err := svc.records.Validate(record)
		if err != nil {
			return nil, err
		}
		if details != nil {
			entries = append(entries, LookupError{
				Error:    "Invalid program lookup data",
				Details:  details,
				CourseID: listing.ID,
			})
			continue
		}
		entries = append(entries, record)
	}
	return entries, nil
}
