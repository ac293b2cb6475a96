package progress

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/edxapp"
	"github.com/nelc/eoxnelp/core/user"
)

var ErrDispatcherClosed = errors.New("progress dispatcher closed")

// BlockCompletedEvent is published by the LMS whenever a learner completes a block.
type BlockCompletedEvent struct {
	UserID   int    `json:"user_id" validate:"required"`
	CourseID string `json:"course_id" validate:"required"`
	BlockID  string `json:"block_id"`
}

// Dispatcher pushes progress data to the sink from a fixed pool of workers.
// Failures are logged, never retried.
type Dispatcher struct {
	gen    *Generator
	users  *user.Service
	grades edxapp.Grades
	sink   Sink
	logger core.Logger

	jobs   chan BlockCompletedEvent
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(gen *Generator, users *user.Service, grades edxapp.Grades, sink Sink, logger core.Logger, workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		gen:    gen,
		users:  users,
		grades: grades,
		sink:   sink,
		logger: logger,
		jobs:   make(chan BlockCompletedEvent, workers*16),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for event := range d.jobs {
		if err := d.Dispatch(context.Background(), event); err != nil {
			d.logger.Error(fmt.Sprintf("%sdispatching progress of user %d in %s: %v", logPrefix, event.UserID, event.CourseID, err), err)
		}
	}
}

// BlockCompleted queues the event, blocking while the queue is full.
func (d *Dispatcher) BlockCompleted(ctx context.Context, event BlockCompletedEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.jobs <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch generates and posts the progress of the event's learner.
func (d *Dispatcher) Dispatch(ctx context.Context, event BlockCompletedEvent) error {
	usr, err := d.users.GetByID(ctx, event.UserID)
	if err != nil {
		return errors.Wrap(err, "getting user")
	}
	key, err := edxapp.ParseCourseKey(event.CourseID)
	if err != nil {
		return err
	}
	grade, err := d.grades.Read(ctx, usr.Username, key)
	if err != nil {
		return errors.Wrap(err, "reading course grade")
	}

	data, err := d.gen.Generate(ctx, usr, key.String(), grade.Passed)
	if err != nil {
		return errors.Wrap(err, "generating progress data")
	}
	resp, err := d.sink.EnrollmentProgress(ctx, data)
	if err != nil {
		return errors.Wrap(err, "posting progress data")
	}
	d.logger.Info(fmt.Sprintf(
		"%sThe data %+v was sent to the futurex service host %s. The response was: %v",
		logPrefix, data, d.sink.BaseURL(), resp,
	))
	return nil
}

// Close stops accepting events and waits for the queued ones to be processed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}
