// Package rediscontent keeps course root blocks in redis, one JSON document per course.
package rediscontent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/edxapp"
)

type Store struct {
	client *redis.Client
	prefix string
}

var _ edxapp.ContentStore = (*Store)(nil)

func New(conf core.RedisConfig) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
	return &Store{client: rdb, prefix: conf.KeyPrefix}
}

func (s *Store) key(courseKey edxapp.CourseKey) string {
	return fmt.Sprintf("%s:course:%s", s.prefix, courseKey)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) GetCourse(ctx context.Context, key edxapp.CourseKey) (edxapp.CourseBlock, error) {
	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return edxapp.CourseBlock{}, edxapp.ErrCourseNotFound
	}
	if err != nil {
		return edxapp.CourseBlock{}, errors.Wrap(err, "reading course block")
	}

	var course edxapp.CourseBlock
	if err := json.Unmarshal(raw, &course); err != nil {
		return edxapp.CourseBlock{}, errors.Wrapf(err, "decoding course block %s", key)
	}
	if course.OtherCourseSettings == nil {
		course.OtherCourseSettings = make(map[string]interface{})
	}
	return course, nil
}

// Put stores a course block, creating it when needed.
func (s *Store) Put(ctx context.Context, course edxapp.CourseBlock) error {
	raw, err := json.Marshal(course)
	if err != nil {
		return errors.Wrap(err, "encoding course block")
	}
	return errors.Wrap(s.client.Set(ctx, s.key(course.ID), raw, 0).Err(), "writing course block")
}

// UpdateItem overwrites an existing course block.
func (s *Store) UpdateItem(ctx context.Context, course edxapp.CourseBlock, editorID int) error {
	n, err := s.client.Exists(ctx, s.key(course.ID)).Result()
	if err != nil {
		return errors.Wrap(err, "checking course block")
	}
	if n == 0 {
		return edxapp.ErrCourseNotFound
	}
	course.EditedBy = editorID
	course.EditedOn = time.Now().UTC()
	return s.Put(ctx, course)
}
