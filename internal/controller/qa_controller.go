package controller

import (
	"errors"

	"legal-qa-be/internal/dto"
	"legal-qa-be/internal/pkg/serverutils"
	"legal-qa-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IQAController interface {
	RegisterRoutes(r fiber.Router)
	Answer(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
}

type qaController struct {
	qaService service.IQAService
}

func NewQAController(qaService service.IQAService) IQAController {
	return &qaController{
		qaService: qaService,
	}
}

func (c *qaController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/qa/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("answer", c.Answer)
	h.Post("ask", c.Ask)
	h.Get("sessions/:id", c.ShowSession)
}

// Answer runs the pipeline synchronously and returns the terminal result.
func (c *qaController) Answer(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.qaService.Ask(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

// Ask queues the question and replies immediately with the pending session.
func (c *qaController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := c.qaService.AskAsync(ctx.Context(), &req)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Question accepted", res))
}

func (c *qaController) ShowSession(ctx *fiber.Ctx) error {
	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Bad session id")
	}

	workspaceId, err := uuid.Parse(ctx.Query("workspace_id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Bad workspace id")
	}

	res, err := c.qaService.GetSession(ctx.Context(), sessionId, workspaceId)
	if err != nil {
		return mapServiceError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Session not found")
	case errors.Is(err, service.ErrAlreadyProcessing):
		return fiber.NewError(fiber.StatusConflict, "Session is already being processed")
	default:
		return err
	}
}
