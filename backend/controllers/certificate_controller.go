package controllers

import (
	"bytes"
	"log"

	"academy/backend/certificate"
	"academy/backend/config"
	"academy/backend/middleware"
	"academy/backend/tracker"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CertificateController struct {
	Cfg     *config.Config
	Tracker *tracker.Tracker
	Issuer  *certificate.Issuer
	Content tracker.ContentStore
	Logger  *log.Logger
}

func NewCertificateController(cfg *config.Config, tr *tracker.Tracker, issuer *certificate.Issuer, content tracker.ContentStore, logger *log.Logger) *CertificateController {
	return &CertificateController{Cfg: cfg, Tracker: tr, Issuer: issuer, Content: content, Logger: logger}
}

// Download godoc
// @Summary Download a certificate of completion
// @Description Available once the course is completed
// @Tags courses
// @Produce application/pdf
// @Param id path string true "Course ID"
// @Success 200 {file} file
// @Failure 409 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/certificate [get]
func (cc *CertificateController) Download(c *fiber.Ctx) error {
	userID, courseID := middleware.UserID(c), c.Params("id")
	ctx := c.UserContext()

	record, err := cc.Tracker.Status(ctx, userID, courseID)
	if err != nil {
		return trackerError(c, cc.Logger, err)
	}
	if tracker.StateOf(record.CompletionPercentage) != tracker.CourseCompleted {
		return utils.Conflict(c, "Course not completed")
	}

	course, err := cc.Content.Course(ctx, courseID)
	if err != nil {
		return trackerError(c, cc.Logger, err)
	}
	completedAt := record.LastAccessed
	if record.CompletedAt != nil {
		completedAt = *record.CompletedAt
	}
	// issued on the completion notification; Issue covers a notification that failed
	cert, err := cc.Issuer.Issue(ctx, tracker.CompletionEvent{
		LearnerID:   userID,
		CourseID:    courseID,
		CourseTitle: course.Title,
		CompletedAt: completedAt,
	})
	if err != nil {
		if cc.Logger != nil {
			cc.Logger.Printf("certificate issue for learner %s course %s failed: %v", userID, courseID, err)
		}
		return utils.InternalServerError(c, "Could not issue certificate")
	}

	var buf bytes.Buffer
	if err := certificate.Render(&buf, certificate.Data{
		RecipientName: cert.RecipientName,
		CourseTitle:   cert.CourseTitle,
		CompletedAt:   cert.IssuedAt,
		Number:        cert.Number,
		Issuer:        cc.Cfg.CertificateIssuer,
	}); err != nil {
		return utils.InternalServerError(c, "Could not render certificate")
	}

	c.Attachment(certificate.FileName(cert.RecipientName, cert.CourseTitle))
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(buf.Bytes())
}
