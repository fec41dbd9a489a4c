package controllers

import (
	"errors"
	"log"

	"academy/backend/metrics"
	"academy/backend/tracker"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// trackerError maps tracker failures onto the response envelope.
func trackerError(c *fiber.Ctx, logger *log.Logger, err error) error {
	switch {
	case errors.Is(err, tracker.ErrInvalidSubmission):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, tracker.ErrPrerequisiteNotMet):
		return utils.Conflict(c, "Pass the quiz first: "+err.Error())
	case errors.Is(err, tracker.ErrCourseNotFound):
		return utils.NotFound(c, "Course not found")
	case errors.Is(err, tracker.ErrCorruptRecord):
		if logger != nil {
			logger.Printf("unreadable progress record on %s %s: %v", c.Method(), c.Path(), err)
		}
		return utils.InternalServerError(c, "Progress record is unreadable")
	case errors.Is(err, tracker.ErrPersistence):
		metrics.ObservePersistenceFailure()
		if logger != nil {
			logger.Printf("progress store failure on %s %s: %v", c.Method(), c.Path(), err)
		}
		return utils.ServiceUnavailable(c, "Progress could not be saved, please retry")
	default:
		if logger != nil {
			logger.Printf("unexpected error on %s %s: %v", c.Method(), c.Path(), err)
		}
		return utils.InternalServerError(c, "Internal server error")
	}
}

// storeError tags a failed progress listing as retryable unless the rows themselves are unreadable.
func storeError(err error) error {
	if errors.Is(err, tracker.ErrCorruptRecord) {
		return err
	}
	return errors.Join(tracker.ErrPersistence, err)
}

// parseBody decodes and validates a JSON request body. It writes the error response itself
// and returns false when the handler should stop.
func parseBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(out); errs != nil {
		return false, utils.ValidationError(c, errs)
	}
	return true, nil
}
