package lmsedxapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/edxapp"
	"github.com/nelc/eoxnelp/tests"
)

const courseID = "course-v1:NELC+P101+2024"

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}

func newPlatform(t *testing.T, handler http.Handler) (*Platform, *testutil.Logger) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := testutil.NewLogger()
	p := New(core.EdxappConfig{LMSBaseURL: srv.URL, CMSBaseURL: srv.URL, AccessToken: "tok"}, logger)
	return p, logger
}

func mustKey(t *testing.T) edxapp.CourseKey {
	key, err := edxapp.ParseCourseKey(courseID)
	require.NoError(t, err)
	return key
}

func TestPlatform_VisibleCourses(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(coursesPath, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "JWT tok", r.Header.Get("Authorization"))
		assert.Equal(t, "learner", r.URL.Query().Get("username"))
		switch r.URL.Query().Get("page") {
		case "1":
			writeJSON(w, 200, `{"results": [{"id": "course-v1:NELC+P101+2024", "name": "P101", "effort": "5:30"}],
				"pagination": {"next": "http://lms/api/courses/v1/courses/?page=2", "num_pages": 2}}`)
		case "2":
			writeJSON(w, 200, `{"results": [{"id": "course-v1:NELC+P102+2024", "course_id": "course-v1:NELC+P102+2024", "name": "P102", "effort": null}],
				"pagination": {"next": null, "num_pages": 2}}`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	p, _ := newPlatform(t, mux)

	listings, err := p.VisibleCourses(context.Background(), "learner")
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, courseID, listings[0].CourseID)
	require.NotNil(t, listings[0].Effort)
	assert.Equal(t, "5:30", *listings[0].Effort)
	assert.Nil(t, listings[1].Effort)
}

func TestPlatform_Overview(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/courses/v1/courses/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/courses/v1/courses/"+courseID+"/" {
			writeJSON(w, 200, `{"id": "course-v1:NELC+P101+2024", "name": "P101", "effort": "10"}`)
			return
		}
		writeJSON(w, 404, `{"detail": "not found"}`)
	})
	p, _ := newPlatform(t, mux)

	o, err := p.Overview(context.Background(), mustKey(t))
	require.NoError(t, err)
	assert.Equal(t, "P101", o.DisplayName)
	assert.Equal(t, "10", *o.Effort)

	missing, _ := edxapp.ParseCourseKey("course-v1:NELC+P999+2024")
	_, err = p.Overview(context.Background(), missing)
	assert.Equal(t, edxapp.ErrCourseNotFound, err)
}

func TestPlatform_Enrollment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/enrollment/v1/enrollment/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/enrollment/v1/enrollment/learner," + courseID:
			writeJSON(w, 200, `{"created": "2023-05-04T12:30:00Z", "mode": "audit", "is_active": true,
				"user": "learner", "course_details": {"course_id": "course-v1:NELC+P101+2024"}}`)
		case "/api/enrollment/v1/enrollment/inactive," + courseID:
			writeJSON(w, 200, `{"created": "2023-05-04T12:30:00Z", "mode": "audit", "is_active": false,
				"user": "inactive", "course_details": {"course_id": "course-v1:NELC+P101+2024"}}`)
		default:
			w.WriteHeader(200)
		}
	})
	p, _ := newPlatform(t, mux)
	ctx := context.Background()
	key := mustKey(t)

	e, err := p.GetEnrollment(ctx, "learner", key)
	require.NoError(t, err)
	assert.True(t, e.IsActive)
	assert.Equal(t, time.Date(2023, 5, 4, 12, 30, 0, 0, time.UTC), e.Created.UTC())

	_, err = p.GetEnrollment(ctx, "stranger", key)
	assert.Equal(t, edxapp.ErrEnrollmentNotFound, err)

	tests := []struct {
		username string
		want     bool
	}{
		{"learner", true},
		{"inactive", false},
		{"stranger", false},
	}
	for _, tc := range tests {
		t.Run(tc.username, func(t *testing.T) {
			ok, err := p.IsEnrolled(ctx, tc.username, key)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestPlatform_Read(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/grades/v1/courses/"+courseID+"/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("username") == "learner" {
			writeJSON(w, 200, `[{"username": "learner", "course_id": "course-v1:NELC+P101+2024", "passed": true, "percent": 0.9}]`)
			return
		}
		writeJSON(w, 200, `[]`)
	})
	p, _ := newPlatform(t, mux)

	g, err := p.Read(context.Background(), "learner", mustKey(t))
	require.NoError(t, err)
	assert.True(t, g.Passed)
	assert.Equal(t, 0.9, g.Percent)

	g, err = p.Read(context.Background(), "nobody", mustKey(t))
	require.NoError(t, err)
	assert.False(t, g.Passed)
}

func TestPlatform_Summary(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/course_home/v1/progress/"+courseID, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"completion_summary": {"complete_count": 3, "incomplete_count": 1, "locked_count": 0}}`)
	})
	p, _ := newPlatform(t, mux)

	s, err := p.Summary(context.Background(), "learner", mustKey(t))
	require.NoError(t, err)
	assert.Equal(t, edxapp.CompletionSummary{CompleteCount: 3, IncompleteCount: 1}, s)
}

func TestPlatform_ContentStore(t *testing.T) {
	var patched map[string]settingField
	mux := http.NewServeMux()
	mux.HandleFunc("/api/contentstore/v0/advanced_settings/"+courseID, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, 200, `{"display_name": {"value": "P101"},
				"other_course_settings": {"value": {"program_metadata_v1": {"program_code": "P-101"}}}}`)
		case http.MethodPatch:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&patched))
			writeJSON(w, 200, `{}`)
		}
	})
	mux.HandleFunc("/api/contentstore/v0/advanced_settings/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 404, `{}`)
	})
	p, _ := newPlatform(t, mux)
	ctx := context.Background()

	course, err := p.GetCourse(ctx, mustKey(t))
	require.NoError(t, err)
	assert.Equal(t, "P101", course.DisplayName)
	assert.Equal(t, map[string]interface{}{
		"program_metadata_v1": map[string]interface{}{"program_code": "P-101"},
	}, course.OtherCourseSettings)

	course.OtherCourseSettings["foo"] = "bar"
	require.NoError(t, p.UpdateItem(ctx, course, 7))
	assert.Equal(t, map[string]interface{}{
		"program_metadata_v1": map[string]interface{}{"program_code": "P-101"},
		"foo":                 "bar",
	}, patched[edxapp.OtherCourseSettingsKey].Value)

	missing, _ := edxapp.ParseCourseKey("course-v1:NELC+P999+2024")
	_, err = p.GetCourse(ctx, missing)
	assert.Equal(t, edxapp.ErrCourseNotFound, err)
}
