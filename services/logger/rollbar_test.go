package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/user"
)

func TestPrepare(t *testing.T) {
	usr := user.User{ID: 7, Username: "learner"}
	other := user.User{ID: 8, Username: "other"}
	err := errors.New("boom")

	args, person := prepare("msg", []interface{}{err, usr, &other, map[string]interface{}{"k": "v"}})
	assert.Equal(t, []interface{}{"msg", err, map[string]interface{}{"k": "v"}}, args)
	if assert.NotNil(t, person) {
		assert.Equal(t, "7", person.StringID())
	}

	args, person = prepare("msg", []interface{}{user.User{}})
	assert.Equal(t, []interface{}{"msg"}, args)
	assert.Nil(t, person)
}

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "API : ", 0), &core.Config{TestMode: true, Debug: false})

	logger.Debug("hidden")
	logger.Info("shown", map[string]interface{}{"k": "v"})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "API : [info] shown")
	assert.Contains(t, out, "map[k:v]")
}
