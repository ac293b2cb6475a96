package program

const (
	// MetadataKey is the other_course_settings entry holding the program metadata.
	MetadataKey = "program_metadata_v1"

	// FeatureOtherCourseSettings gates the metadata endpoints.
	FeatureOtherCourseSettings = "ENABLE_OTHER_COURSE_SETTINGS"

	DefaultTrainerType = 10
	TrainingLocation   = "FutureX"
	DurationUnit       = "hour"

	FlagYes = "01"
	FlagNo  = "00"
)

// Metadata is the program information stored per course.
type Metadata struct {
	ProgramCode    string `json:"program_code" validate:"required,notblank,max=64"`
	TypeOfActivity *int   `json:"type_of_activity" validate:"required"`
	Mandatory      string `json:"mandatory" validate:"required,oneof=01 00"`
	ProgramApprove string `json:"program_approve" validate:"required,oneof=01 00"`
	TrainerType    int    `json:"trainer_type"` // read-only
}

// ToMap returns the metadata as stored in the course settings.
func (md Metadata) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"program_code":    md.ProgramCode,
		"mandatory":       md.Mandatory,
		"program_approve": md.ProgramApprove,
		"trainer_type":    md.TrainerType,
	}
	if md.TypeOfActivity != nil {
		m["type_of_activity"] = *md.TypeOfActivity
	} else {
		m["type_of_activity"] = nil
	}
	return m
}

// LookupRecord is the flat representation of a course program exposed to reporting systems.
// Optional upstream values map to null.
type LookupRecord struct {
	ProgramName      *string `json:"program_name"`
	ProgramCode      *string `json:"program_code"`
	TrainingLocation string  `json:"training_location"`
	DateStart        *string `json:"date_start"`
	DateStartHijri   *string `json:"date_start_hijri"`
	DateEnd          *string `json:"date_end"`
	DateEndHijri     *string `json:"date_end_hijri"`
	TrainerType      int     `json:"trainer_type"`
	TypeOfActivity   *string `json:"type_of_activity"`
	TypeOfActivityID *int    `json:"type_of_activity_id"`
	Unit             string  `json:"unit"`
	Duration         int     `json:"duration"`
	Mandatory        *string `json:"mandatory"`
	ProgramApprove   *string `json:"program_approve"`
	Code             *string `json:"code"`
}

// LookupError reports a course whose lookup record failed validation.
type LookupError struct {
	Error    string              `json:"error"`
	Details  map[string][]string `json:"details"`
	CourseID string              `json:"course_id"`
}
