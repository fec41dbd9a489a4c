package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"academy/backend/tracker"

	"github.com/robfig/cron/v3"
)

type RecordWalker interface {
	Each(ctx context.Context, batchSize int, fn func(*tracker.ProgressRecord, error) error) error
}

type StaleEntry struct {
	LearnerID string   `json:"learner_id"`
	CourseID  string   `json:"course_id"`
	ModuleIDs []string `json:"module_ids"`
}

// Report summarises one pass over every progress record.
type Report struct {
	StartedAt time.Time `json:"started_at"`
	Scanned   int       `json:"scanned"`
	Malformed int       `json:"malformed"`
	// OrphanedCourses counts records whose course no longer exists.
	OrphanedCourses int          `json:"orphaned_courses"`
	Stale           []StaleEntry `json:"stale"`
	// Drifted counts records whose stored percentage differs from the current module list.
	Drifted int `json:"drifted"`
}

// Auditor finds records that reference removed modules or courses. It only reads.
type Auditor struct {
	content   tracker.ContentStore
	records   RecordWalker
	logger    *log.Logger
	batchSize int
}

func NewAuditor(content tracker.ContentStore, records RecordWalker, logger *log.Logger) *Auditor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Auditor{content: content, records: records, logger: logger, batchSize: 200}
}

func (a *Auditor) Run(ctx context.Context) (*Report, error) {
	report := &Report{StartedAt: time.Now().UTC()}
	courses := map[string]*tracker.Course{}
	missing := map[string]bool{}

	err := a.records.Each(ctx, a.batchSize, func(r *tracker.ProgressRecord, err error) error {
		report.Scanned++
		if err != nil {
			report.Malformed++
			a.logger.Printf("unreadable progress row: %v", err)
			return nil
		}
		if missing[r.CourseID] {
			report.OrphanedCourses++
			return nil
		}
		course, ok := courses[r.CourseID]
		if !ok {
			c, err := a.content.Course(ctx, r.CourseID)
			if errors.Is(err, tracker.ErrCourseNotFound) {
				missing[r.CourseID] = true
				report.OrphanedCourses++
				return nil
			}
			if err != nil {
				return fmt.Errorf("load course %s: %w", r.CourseID, err)
			}
			courses[r.CourseID] = c
			course = c
		}

		if stale := r.StaleModuleIDs(course); len(stale) > 0 {
			report.Stale = append(report.Stale, StaleEntry{LearnerID: r.LearnerID, CourseID: r.CourseID, ModuleIDs: stale})
		}
		if tracker.CompletionPercentage(course, r.CompletedModuleIDs) != r.CompletionPercentage {
			report.Drifted++
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	a.logger.Printf("scanned %d records: %d with stale modules, %d drifted, %d orphaned, %d malformed",
		report.Scanned, len(report.Stale), report.Drifted, report.OrphanedCourses, report.Malformed)
	for _, s := range report.Stale {
		a.logger.Printf("learner %s course %s references removed modules %v", s.LearnerID, s.CourseID, s.ModuleIDs)
	}
	return report, nil
}

// Schedule runs the audit on a cron spec. The caller stops the returned scheduler.
func (a *Auditor) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		a.logger.Println("Running progress audit...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := a.Run(ctx); err != nil {
			a.logger.Printf("Error running progress audit: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid audit schedule %q: %w", spec, err)
	}
	c.Start()
	a.logger.Printf("Progress audit scheduled: %s", spec)
	return c, nil
}
