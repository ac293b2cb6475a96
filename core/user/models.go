package user

import (
	"strconv"
	"time"
)

// Global roles
const (
	// RoleProgramsLookup grants read access to any learner's program lookup records.
	RoleProgramsLookup = "programs:lookup"
	// RoleEventsPublisher is held by the LMS service user that forwards host events.
	RoleEventsPublisher = "events:publisher"
)

// Course access roles
const (
	CourseRoleInstructor = "instructor"
	CourseRoleStaff      = "staff"
)

// SAML social auth provider name.
const ProviderSAML = "tpa-saml"

var (
	AllRoles = []string{RoleProgramsLookup, RoleEventsPublisher}

	// StudioWriteRoles grant write access to a course in Studio.
	StudioWriteRoles = []string{CourseRoleInstructor, CourseRoleStaff}
)

type (
	User struct {
		ID        int       `json:"id"`
		Username  string    `json:"username"`
		Email     string    `json:"email"`
		Name      string    `json:"name"`
		IsActive  bool      `json:"is_active"`
		IsStaff   bool      `json:"is_staff"`
		Roles     []string  `json:"roles"`
		ExtraInfo ExtraInfo `json:"extra_info"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	// ExtraInfo holds the registration extension fields of a user.
	ExtraInfo struct {
		NationalID string `json:"national_id"`
		ArabicName string `json:"arabic_name"`
	}

	// SocialAuth links a user to an external identity provider account.
	SocialAuth struct {
		ID        int                    `json:"id"`
		UserID    int                    `json:"user_id"`
		Provider  string                 `json:"provider"`
		UID       string                 `json:"uid"`
		ExtraData map[string]interface{} `json:"extra_data"`
	}

	CourseAccessRole struct {
		UserID   int    `json:"user_id"`
		CourseID string `json:"course_id"`
		Role     string `json:"role"`
	}
)

// StringID returns the user ID as a string, the way it travels in JWT subjects.
func (u User) StringID() string {
	return strconv.Itoa(u.ID)
}

func (u User) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		for _, r := range u.Roles {
			if r == role {
				return true
			}
		}
	}
	return false
}

// ExternalUID returns the uid stored by the SAML backend in extra_data, falling back to UID.
func (sa SocialAuth) ExternalUID() string {
	switch uid := sa.ExtraData["uid"].(type) {
	case string:
		if uid != "" {
			return uid
		}
	case int:
		return strconv.Itoa(uid)
	case float64:
		return strconv.FormatFloat(uid, 'f', -1, 64)
	}
	return sa.UID
}
