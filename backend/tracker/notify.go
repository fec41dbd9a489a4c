package tracker

import (
	"context"
	"errors"
)

// Notifiers fans a completion event out to every notifier. All are called even if some fail.
type Notifiers []Notifier

func (ns Notifiers) CourseCompleted(ctx context.Context, event CompletionEvent) error {
	var errs []error
	for _, n := range ns {
		if n == nil {
			continue
		}
		if err := n.CourseCompleted(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event CompletionEvent) error

func (f NotifierFunc) CourseCompleted(ctx context.Context, event CompletionEvent) error {
	return f(ctx, event)
}
