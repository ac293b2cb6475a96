package edxapp

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidCourseKey = errors.New("invalid course key")

// CourseKey identifies a course run, e.g. course-v1:NELC+P101+2024_T1.
type CourseKey struct {
	Org    string
	Course string
	Run    string
	legacy bool
}

// ParseCourseKey accepts both course-v1:org+course+run and the legacy org/course/run form.
func ParseCourseKey(s string) (CourseKey, error) {
	s = strings.TrimSpace(s)
	var parts []string
	legacy := false
	switch {
	case strings.HasPrefix(s, "course-v1:"):
		parts = strings.Split(strings.TrimPrefix(s, "course-v1:"), "+")
	case strings.Count(s, "/") == 2:
		parts = strings.Split(s, "/")
		legacy = true
	default:
		return CourseKey{}, errors.Wrapf(ErrInvalidCourseKey, "%q", s)
	}
	if len(parts) != 3 {
		return CourseKey{}, errors.Wrapf(ErrInvalidCourseKey, "%q", s)
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\n") {
			return CourseKey{}, errors.Wrapf(ErrInvalidCourseKey, "%q", s)
		}
	}
	return CourseKey{Org: parts[0], Course: parts[1], Run: parts[2], legacy: legacy}, nil
}

func (k CourseKey) String() string {
	if k.IsZero() {
		return ""
	}
	if k.legacy {
		return k.Org + "/" + k.Course + "/" + k.Run
	}
	return "course-v1:" + k.Org + "+" + k.Course + "+" + k.Run
}

func (k CourseKey) IsZero() bool {
	return k.Org == "" && k.Course == "" && k.Run == ""
}

func (k CourseKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *CourseKey) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*k = CourseKey{}
		return nil
	}
	key, err := ParseCourseKey(string(b))
	if err != nil {
		return err
	}
	*k = key
	return nil
}
