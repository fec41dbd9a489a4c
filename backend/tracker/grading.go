package tracker

import "fmt"

// Grade scores answers against quiz. answers[i] is the chosen option index for question i.
// Out-of-range indices count as wrong.
func Grade(quiz *Quiz, answers []int) (correct int, score int, err error) {
	if quiz == nil || len(quiz.Questions) == 0 {
		return 0, 0, fmt.Errorf("%w: module has no quiz", ErrInvalidSubmission)
	}
	if len(answers) != len(quiz.Questions) {
		return 0, 0, fmt.Errorf("%w: expected %d answers, got %d", ErrInvalidSubmission, len(quiz.Questions), len(answers))
	}

	for i, q := range quiz.Questions {
		if answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	return correct, Percent(correct, len(quiz.Questions)), nil
}

// Percent returns round(100*n/d) rounding half up, or 0 when d is 0.
func Percent(n, d int) int {
	if d <= 0 || n <= 0 {
		return 0
	}
	return (200*n + d) / (2 * d)
}

// CompletionPercentage derives the record percentage against the current module list.
// Completed ids that are no longer part of the course are ignored.
func CompletionPercentage(course *Course, completed []string) int {
	set := course.moduleSet()
	seen := make(map[string]struct{}, len(completed))
	count := 0
	for _, id := range completed {
		if _, ok := set[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		count++
	}
	return Percent(count, len(course.Modules))
}

func StateOf(percentage int) CourseState {
	switch {
	case percentage >= 100:
		return CourseCompleted
	case percentage > 0:
		return CourseInProgress
	default:
		return CourseNotStarted
	}
}
