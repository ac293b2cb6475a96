// Package memedxapp is an in-process stand-in for the host LMS, used in development and tests.
package memedxapp

import (
	"context"
	"sync"
	"time"

	"github.com/nelc/eoxnelp/core/edxapp"
)

type Platform struct {
	mu          sync.RWMutex
	courses     map[string]edxapp.CourseBlock
	listings    []edxapp.CourseListing
	hidden      map[string]bool
	enrollments map[string]edxapp.Enrollment
	grades      map[string]edxapp.CourseGrade
	completion  map[string]edxapp.CompletionSummary
}

var (
	_ edxapp.ContentStore  = (*Platform)(nil)
	_ edxapp.CourseCatalog = (*Platform)(nil)
	_ edxapp.Enrollments   = (*Platform)(nil)
	_ edxapp.Grades        = (*Platform)(nil)
	_ edxapp.Completion    = (*Platform)(nil)
)

func New() *Platform {
	return &Platform{
		courses:     make(map[string]edxapp.CourseBlock),
		hidden:      make(map[string]bool),
		enrollments: make(map[string]edxapp.Enrollment),
		grades:      make(map[string]edxapp.CourseGrade),
		completion:  make(map[string]edxapp.CompletionSummary),
	}
}

// Edxapp exposes the platform through every host interface.
func (p *Platform) Edxapp() edxapp.Platform {
	return edxapp.Platform{
		ContentStore: p,
		Catalog:      p,
		Enrollments:  p,
		Grades:       p,
		Completion:   p,
	}
}

func userCourseKey(username string, key edxapp.CourseKey) string {
	return username + "|" + key.String()
}

// AddCourse registers a course block and its catalog listing.
func (p *Platform) AddCourse(listing edxapp.CourseListing, settings map[string]interface{}) error {
	key, err := edxapp.ParseCourseKey(listing.CourseID)
	if err != nil {
		return err
	}
	if listing.ID == "" {
		listing.ID = listing.CourseID
	}
	if settings == nil {
		settings = make(map[string]interface{})
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.courses[key.String()] = edxapp.CourseBlock{ID: key, DisplayName: listing.Name, OtherCourseSettings: settings}
	p.listings = append(p.listings, listing)
	return nil
}

// Hide removes a course from the catalog without deleting it.
func (p *Platform) Hide(courseID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hidden[courseID] = true
}

func (p *Platform) Enroll(username string, key edxapp.CourseKey, active bool, created time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enrollments[userCourseKey(username, key)] = edxapp.Enrollment{
		Username: username,
		CourseID: key.String(),
		Mode:     "audit",
		IsActive: active,
		Created:  created,
	}
}

func (p *Platform) SetGrade(username string, key edxapp.CourseKey, passed bool, percent float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grades[userCourseKey(username, key)] = edxapp.CourseGrade{
		Username: username,
		CourseID: key.String(),
		Passed:   passed,
		Percent:  percent,
	}
}

func (p *Platform) SetCompletion(username string, key edxapp.CourseKey, summary edxapp.CompletionSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completion[userCourseKey(username, key)] = summary
}

// ContentStore

func (p *Platform) GetCourse(_ context.Context, key edxapp.CourseKey) (edxapp.CourseBlock, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	course, ok := p.courses[key.String()]
	if !ok {
		return edxapp.CourseBlock{}, edxapp.ErrCourseNotFound
	}
	settings := make(map[string]interface{}, len(course.OtherCourseSettings))
	for k, v := range course.OtherCourseSettings {
		settings[k] = v
	}
	course.OtherCourseSettings = settings
	return course, nil
}

func (p *Platform) UpdateItem(_ context.Context, course edxapp.CourseBlock, editorID int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.courses[course.ID.String()]; !ok {
		return edxapp.ErrCourseNotFound
	}
	course.EditedBy = editorID
	p.courses[course.ID.String()] = course
	return nil
}

// CourseCatalog

func (p *Platform) VisibleCourses(_ context.Context, _ string) ([]edxapp.CourseListing, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	listings := make([]edxapp.CourseListing, 0, len(p.listings))
	for _, l := range p.listings {
		if !p.hidden[l.CourseID] {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

func (p *Platform) Overview(_ context.Context, key edxapp.CourseKey) (edxapp.CourseOverview, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, l := range p.listings {
		if l.CourseID == key.String() {
			return edxapp.CourseOverview{ID: l.CourseID, DisplayName: l.Name, Effort: l.Effort}, nil
		}
	}
	return edxapp.CourseOverview{}, edxapp.ErrCourseNotFound
}

// Enrollments

func (p *Platform) IsEnrolled(_ context.Context, username string, key edxapp.CourseKey) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.enrollments[userCourseKey(username, key)]
	return ok && e.IsActive, nil
}

func (p *Platform) GetEnrollment(_ context.Context, username string, key edxapp.CourseKey) (edxapp.Enrollment, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	e, ok := p.enrollments[userCourseKey(username, key)]
	if !ok {
		return edxapp.Enrollment{}, edxapp.ErrEnrollmentNotFound
	}
	return e, nil
}

// Grades

func (p *Platform) Read(_ context.Context, username string, key edxapp.CourseKey) (edxapp.CourseGrade, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if g, ok := p.grades[userCourseKey(username, key)]; ok {
		return g, nil
	}
	return edxapp.CourseGrade{Username: username, CourseID: key.String()}, nil
}

// Completion

func (p *Platform) Summary(_ context.Context, username string, key edxapp.CourseKey) (edxapp.CompletionSummary, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.completion[userCourseKey(username, key)], nil
}
