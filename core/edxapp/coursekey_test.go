package edxapp

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCourseKey(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    CourseKey
		wantStr string
		wantErr bool
	}{
		{name: "course-v1", in: "course-v1:NELC+P101+2024_T1", want: CourseKey{Org: "NELC", Course: "P101", Run: "2024_T1"}, wantStr: "course-v1:NELC+P101+2024_T1"},
		{name: "surrounding spaces", in: " course-v1:a+b+c ", want: CourseKey{Org: "a", Course: "b", Run: "c"}, wantStr: "course-v1:a+b+c"},
		{name: "legacy", in: "edX/DemoX/Demo_Course", want: CourseKey{Org: "edX", Course: "DemoX", Run: "Demo_Course", legacy: true}, wantStr: "edX/DemoX/Demo_Course"},
		{name: "missing run", in: "course-v1:a+b", wantErr: true},
		{name: "empty part", in: "course-v1:a++c", wantErr: true},
		{name: "garbage", in: "c1", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCourseKey(tt.in)
			if tt.wantErr {
				assert.Equal(t, ErrInvalidCourseKey, errors.Cause(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}
}

func TestCourseKey_JSON(t *testing.T) {
	block := CourseBlock{ID: CourseKey{Org: "NELC", Course: "P1", Run: "R"}, DisplayName: "Course"}
	data, err := json.Marshal(block)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id":"course-v1:NELC+P1+R"`)

	var decoded CourseBlock
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, block.ID, decoded.ID)
}

func TestCompletionSummary_Empty(t *testing.T) {
	assert.True(t, CompletionSummary{}.Empty())
	assert.False(t, CompletionSummary{LockedCount: 1}.Empty())
}
