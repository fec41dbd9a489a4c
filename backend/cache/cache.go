package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"time"

	"academy/backend/tracker"
)

// ErrMiss is returned by a Backend when the key is absent.
var ErrMiss = errors.New("cache miss")

type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ContentCache serves course definitions from a Backend and falls through to the
// wrapped store on a miss. Cache failures never fail a read.
type ContentCache struct {
	next    tracker.ContentStore
	backend Backend
	ttl     time.Duration
	logger  *log.Logger
}

func NewContentCache(next tracker.ContentStore, backend Backend, ttl time.Duration, logger *log.Logger) *ContentCache {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &ContentCache{next: next, backend: backend, ttl: ttl, logger: logger}
}

func courseKey(courseID string) string {
	return "academy:course:" + courseID
}

func (c *ContentCache) Course(ctx context.Context, courseID string) (*tracker.Course, error) {
	key := courseKey(courseID)
	raw, err := c.backend.Get(ctx, key)
	if err == nil {
		var course tracker.Course
		if err := json.Unmarshal(raw, &course); err == nil {
			return &course, nil
		}
		c.logger.Printf("discarding undecodable cache entry %s", key)
	} else if !errors.Is(err, ErrMiss) {
		c.logger.Printf("cache get %s: %v", key, err)
	}

	course, err := c.next.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(course); err == nil {
		if err := c.backend.Set(ctx, key, raw, c.ttl); err != nil {
			c.logger.Printf("cache set %s: %v", key, err)
		}
	}
	return course, nil
}

// Invalidate drops a course after it was edited.
func (c *ContentCache) Invalidate(ctx context.Context, courseID string) error {
	return c.backend.Delete(ctx, courseKey(courseID))
}
