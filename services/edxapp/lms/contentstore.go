package lmsedxapp

import (
	"context"
	"fmt"

	"github.com/nelc/eoxnelp/core/edxapp"
)

type settingField struct {
	Value interface{} `json:"value"`
}

// GetCourse reads the course advanced settings from Studio.
func (p *Platform) GetCourse(ctx context.Context, key edxapp.CourseKey) (edxapp.CourseBlock, error) {
	var settings map[string]settingField
	resp, err := p.cms.R().
		SetContext(ctx).
		SetPathParam("course_id", key.String()).
		SetResult(&settings).
		Get(advancedSettingsPath)
	if err := checkResponse(resp, err, edxapp.ErrCourseNotFound, "getting advanced settings"); err != nil {
		return edxapp.CourseBlock{}, err
	}

	course := edxapp.CourseBlock{ID: key, OtherCourseSettings: make(map[string]interface{})}
	if name, ok := settings["display_name"].Value.(string); ok {
		course.DisplayName = name
	}
	switch other := settings[edxapp.OtherCourseSettingsKey].Value.(type) {
	case map[string]interface{}:
		course.OtherCourseSettings = other
	case nil:
	default:
		p.logger.Warn(fmt.Sprintf("course %s has a non-object %s setting", key, edxapp.OtherCourseSettingsKey))
	}
	return course, nil
}

// UpdateItem replaces the other course settings of the course in Studio.
// Studio records the editor from the access token, editorID is informational.
func (p *Platform) UpdateItem(ctx context.Context, course edxapp.CourseBlock, editorID int) error {
	body := map[string]settingField{
		edxapp.OtherCourseSettingsKey: {Value: course.OtherCourseSettings},
	}
	resp, err := p.cms.R().
		SetContext(ctx).
		SetPathParam("course_id", course.ID.String()).
		SetBody(body).
		Patch(advancedSettingsPath)
	if err := checkResponse(resp, err, edxapp.ErrCourseNotFound, "updating advanced settings"); err != nil {
		return err
	}
	p.logger.Debug(fmt.Sprintf("user %d updated %s of %s", editorID, edxapp.OtherCourseSettingsKey, course.ID))
	return nil
}
