package core

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig(t *testing.T) {
	vars := map[string]string{
		"ENV":                            "TEST",
		"TEST_FEATURES":                  "enable_other_course_settings, ENABLE_SAML",
		"TEST_CERTIFICATES_GROUPCODES":   `{"course-v1:NELC+P101+2024": "ABC123"}`,
		"TEST_REGISTRATION_TRANSLATIONS": `{"ar": {"city": "المدينة"}}`,
		"TEST_REGISTRATION_EXTENDEDPROFILEFIELDS": "city, national_id",
	}
	for k, v := range vars {
		_ = os.Setenv(k, v)
	}
	defer func() {
		for k := range vars {
			_ = os.Unsetenv(k)
		}
	}()

	conf := NewConfig()

	assert.Equal(t, "TEST", conf.Env)
	assert.True(t, conf.TestMode)
	assert.True(t, conf.FeatureEnabled("ENABLE_OTHER_COURSE_SETTINGS"))
	assert.True(t, conf.FeatureEnabled("enable_saml"))
	assert.False(t, conf.FeatureEnabled("ENABLE_NOTHING"))
	assert.Equal(t, map[string]string{"course-v1:NELC+P101+2024": "ABC123"}, conf.Certificates.GroupCodes)
	assert.Equal(t, "المدينة", conf.Registration.Translations["ar"]["city"])
	assert.Equal(t, []string{"city", "national_id"}, conf.Registration.ExtendedProfileFields)
	assert.Equal(t, "localhost:5432", conf.Database.Address())

	conf.SetFeature("ENABLE_OTHER_COURSE_SETTINGS", false)
	assert.False(t, conf.FeatureEnabled("ENABLE_OTHER_COURSE_SETTINGS"))
}
