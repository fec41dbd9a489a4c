package metrics

import (
	"context"
	"strconv"
	"time"

	"academy/backend/tracker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "academy_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	quizSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "academy_quiz_submissions_total",
			Help: "Graded quiz submissions",
		},
		[]string{"result"}, // passed, failed
	)

	moduleCompletions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "academy_module_completions_total",
			Help: "Successful module completion requests, repeats included",
		},
	)

	courseCompletions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "academy_course_completions_total",
			Help: "Courses that reached 100 percent",
		},
	)

	progressWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "academy_progress_write_failures_total",
			Help: "Progress operations rejected because the store was unavailable",
		},
	)
)

func ObserveQuiz(passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	quizSubmissions.WithLabelValues(result).Inc()
}

func ObserveModuleCompleted() {
	moduleCompletions.Inc()
}

func ObservePersistenceFailure() {
	progressWriteFailures.Inc()
}

// CompletionCounter counts course completions. It is registered alongside the other notifiers.
var CompletionCounter = tracker.NotifierFunc(func(context.Context, tracker.CompletionEvent) error {
	courseCompletions.Inc()
	return nil
})

// Middleware records request latency by route pattern so ids do not explode cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		requestDuration.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
		return err
	}
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
