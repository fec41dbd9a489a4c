package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"academy/backend/tracker"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakeChannel struct {
	messages []published
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisherCourseCompleted(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "academy.events", log.New(io.Discard, "", 0))
	completedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	err := p.CourseCompleted(context.Background(), tracker.CompletionEvent{
		LearnerID:   "u1",
		CourseID:    "c1",
		CourseTitle: "Secure Coding",
		CompletedAt: completedAt,
	})
	require.NoError(t, err)
	require.Len(t, ch.messages, 1)

	m := ch.messages[0]
	assert.Equal(t, "academy.events", m.exchange)
	assert.Equal(t, CourseCompletedType, m.key)
	assert.Equal(t, "application/json", m.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, m.msg.DeliveryMode)
	assert.Equal(t, "u1", m.msg.Headers["user_id"])

	var body struct {
		Type    string                  `json:"type"`
		Payload tracker.CompletionEvent `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(m.msg.Body, &body))
	assert.Equal(t, CourseCompletedType, body.Type)
	assert.Equal(t, "Secure Coding", body.Payload.CourseTitle)
	assert.True(t, completedAt.Equal(body.Payload.CompletedAt))
}

func TestPublisherWrapsChannelError(t *testing.T) {
	cause := errors.New("channel closed")
	p := newPublisher(&fakeChannel{err: cause}, "academy.events", log.New(io.Discard, "", 0))

	err := p.CourseCompleted(context.Background(), tracker.CompletionEvent{LearnerID: "u1", CourseID: "c1"})
	assert.ErrorIs(t, err, cause)
}

func TestPublisherClose(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "academy.events", nil)
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
