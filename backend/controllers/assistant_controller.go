package controllers

import (
	"errors"
	"log"

	"academy/backend/assistant"
	"academy/backend/middleware"
	"academy/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type AssistantController struct {
	Assistant *assistant.Service
	Logger    *log.Logger
}

func NewAssistantController(svc *assistant.Service, logger *log.Logger) *AssistantController {
	return &AssistantController{Assistant: svc, Logger: logger}
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func (ac *AssistantController) Chat(c *fiber.Ctx) error {
	if ac.Assistant == nil {
		return utils.ServiceUnavailable(c, "Assistant is not configured")
	}
	var req ChatRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	entry, err := ac.Assistant.Chat(c.UserContext(), middleware.UserID(c), req.Message)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyMessage) {
			return utils.BadRequest(c, err.Error())
		}
		if ac.Logger != nil {
			ac.Logger.Printf("assistant chat failed: %v", err)
		}
		return utils.Error(c, fiber.StatusBadGateway, fiber.NewError(fiber.StatusBadGateway, "Assistant is unavailable, please try again"))
	}
	return utils.Success(c, fiber.StatusOK, entry)
}

func (ac *AssistantController) History(c *fiber.Ctx) error {
	if ac.Assistant == nil {
		return utils.ServiceUnavailable(c, "Assistant is not configured")
	}
	history, err := ac.Assistant.History(c.UserContext(), middleware.UserID(c), c.QueryInt("limit", 20))
	if err != nil {
		return utils.InternalServerError(c, "Could not load chat history")
	}
	return utils.Success(c, fiber.StatusOK, history)
}
