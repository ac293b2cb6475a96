package edxappsvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelc/eoxnelp/core"
	lmsedxapp "github.com/nelc/eoxnelp/services/edxapp/lms"
	memedxapp "github.com/nelc/eoxnelp/services/edxapp/memory"
	"github.com/nelc/eoxnelp/tests"
)

func TestNewPlatform(t *testing.T) {
	tests := []struct {
		name     string
		edxapp   core.EdxappConfig
		wantLMS  bool
		wantFail bool
	}{
		{name: "default", edxapp: core.EdxappConfig{}},
		{name: "memory", edxapp: core.EdxappConfig{Backend: BackendMemory, ContentStore: ContentStoreBackend}},
		{name: "lms", edxapp: core.EdxappConfig{Backend: BackendLMS, LMSBaseURL: "http://lms"}, wantLMS: true},
		{name: "unknown backend", edxapp: core.EdxappConfig{Backend: "mongo"}, wantFail: true},
		{name: "unknown content store", edxapp: core.EdxappConfig{ContentStore: "s3"}, wantFail: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conf := &core.Config{Edxapp: tc.edxapp}
			platform, closer, err := NewPlatform(context.Background(), conf, testutil.NewLogger())
			if tc.wantFail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer closer()

			if tc.wantLMS {
				assert.IsType(t, &lmsedxapp.Platform{}, platform.Catalog)
			} else {
				assert.IsType(t, &memedxapp.Platform{}, platform.Catalog)
			}
			assert.NotNil(t, platform.ContentStore)
		})
	}
}
