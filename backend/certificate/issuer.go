package certificate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"academy/backend/models"
	"academy/backend/tracker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issuer records a certificate the first time a learner completes a course.
type Issuer struct {
	DB *gorm.DB
}

func NewIssuer(db *gorm.DB) *Issuer {
	return &Issuer{DB: db}
}

func NewNumber(issuedAt time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("CERT-%d-%s", issuedAt.Year(), id[:10])
}

// CourseCompleted implements tracker.Notifier.
func (i *Issuer) CourseCompleted(ctx context.Context, e tracker.CompletionEvent) error {
	_, err := i.Issue(ctx, e)
	return err
}

// Issue returns the learner's certificate for the course, creating it if needed.
func (i *Issuer) Issue(ctx context.Context, e tracker.CompletionEvent) (*models.Certificate, error) {
	db := i.DB.WithContext(ctx)

	var existing models.Certificate
	err := db.Where("user_id = ? AND course_id = ?", e.LearnerID, e.CourseID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup certificate: %w", err)
	}

	var user models.User
	if err := db.First(&user, "id = ?", e.LearnerID).Error; err != nil {
		return nil, fmt.Errorf("lookup learner %s: %w", e.LearnerID, err)
	}

	issuedAt := e.CompletedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now().UTC()
	}
	cert := models.Certificate{
		Number:        NewNumber(issuedAt),
		UserID:        e.LearnerID,
		CourseID:      e.CourseID,
		RecipientName: user.DisplayName(),
		CourseTitle:   e.CourseTitle,
		IssuedAt:      issuedAt,
	}
	if err := db.Create(&cert).Error; err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}
	return &cert, nil
}

// Find returns ErrNotIssued when the learner has no certificate for the course.
func (i *Issuer) Find(ctx context.Context, learnerID, courseID string) (*models.Certificate, error) {
	var cert models.Certificate
	err := i.DB.WithContext(ctx).Where("user_id = ? AND course_id = ?", learnerID, courseID).First(&cert).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotIssued
	}
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

var ErrNotIssued = errors.New("certificate not issued")

func (i *Issuer) ListByLearner(ctx context.Context, learnerID string) ([]models.Certificate, error) {
	var certs []models.Certificate
	err := i.DB.WithContext(ctx).Where("user_id = ?", learnerID).Order("issued_at DESC").Find(&certs).Error
	return certs, err
}
