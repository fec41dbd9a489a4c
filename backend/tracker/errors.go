package tracker

import "errors"

var (
	// ErrInvalidSubmission marks malformed input: wrong answer count, unknown module, module without a quiz.
	ErrInvalidSubmission = errors.New("invalid submission")
	// ErrPrerequisiteNotMet marks a completion attempt on a module whose quiz is not passed.
	ErrPrerequisiteNotMet = errors.New("prerequisite not met")
	// ErrPersistence marks a failed progress store call. Nothing was applied; the call may be retried.
	ErrPersistence = errors.New("persistence error")

	// ErrCorruptRecord marks a stored record that cannot be read. Retrying will not help.
	ErrCorruptRecord = errors.New("corrupt progress record")

	ErrCourseNotFound = errors.New("course not found")
	// ErrNoProgress is returned by a ProgressStore when no record exists for the pair.
	ErrNoProgress = errors.New("progress record not found")
)
