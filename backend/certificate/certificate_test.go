package certificate

import (
	"bytes"
	"context"
	"testing"
	"time"

	"academy/backend/config"
	"academy/backend/models"
	"academy/backend/tracker"
	"academy/backend/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, Data{
		RecipientName: "Ada Lovelace",
		CourseTitle:   "Threat Modeling",
		CompletedAt:   time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC),
		Number:        "CERT-2026-ABCDEF0123",
		Issuer:        "DIGITS Inc",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Greater(t, buf.Len(), 500)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace-Threat Modeling-certificate.pdf", FileName("Ada Lovelace", "Threat Modeling"))
	assert.Equal(t, "Ada-OWASP Top 10 2026-certificate.pdf", FileName("Ada", "OWASP Top 10: 2026"))
}

func TestDateLayout(t *testing.T) {
	assert.Equal(t, "April 09, 2026", time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC).Format(DateLayout))
}

func TestIssuerIsIdempotent(t *testing.T) {
	db, err := utils.InitDB(&config.Config{DBDriver: "sqlite", DBPath: "file:" + uuid.NewString() + "?mode=memory&cache=shared"})
	require.NoError(t, err)

	user := models.User{Email: "ada@example.com", PasswordHash: "x", FirstName: "Ada", LastName: "Lovelace"}
	require.NoError(t, db.Create(&user).Error)

	issuer := NewIssuer(db)
	ctx := context.Background()
	event := tracker.CompletionEvent{
		LearnerID:   user.ID,
		CourseID:    "course-1",
		CourseTitle: "Threat Modeling",
		CompletedAt: time.Date(2026, 4, 9, 10, 0, 0, 0, time.UTC),
	}

	_, err = issuer.Find(ctx, user.ID, "course-1")
	assert.ErrorIs(t, err, ErrNotIssued)

	require.NoError(t, issuer.CourseCompleted(ctx, event))
	first, err := issuer.Find(ctx, user.ID, "course-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", first.RecipientName)
	assert.Regexp(t, `^CERT-2026-[0-9A-F]{10}$`, first.Number)

	again, err := issuer.Issue(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, first.Number, again.Number)

	certs, err := issuer.ListByLearner(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, certs, 1)
}
