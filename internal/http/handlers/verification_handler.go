package handlers

import (
	"errors"

	"github.com/ecop-onboarding/backend/internal/http/dto"
	"github.com/ecop-onboarding/backend/internal/middleware"
	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/ecop-onboarding/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type VerificationHandler struct {
	requests *services.RequestService
	log      *zap.Logger
}

func NewVerificationHandler(requests *services.RequestService, log *zap.Logger) *VerificationHandler {
	return &VerificationHandler{requests: requests, log: log}
}

func (h *VerificationHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	created, err := h.requests.SubmitVerification(c.Context(), req.Address, req.Kind, req.Fields)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SubmitResponse{
		Success:   true,
		RequestID: created.ID,
		Status:    created.Status,
	})
}

func (h *VerificationHandler) List(c *fiber.Ctx) error {
	rows, err := h.requests.ListVerifications(c.Context(), middleware.GetCaller(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse[models.VerificationWithUser]{Requests: rows})
}

func (h *VerificationHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request id"})
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	caller := middleware.GetCaller(c)
	if req.AdminAddress != "" {
		caller.Address = req.AdminAddress
	}

	updated, err := h.requests.UpdateVerificationStatus(c.Context(), id, req.Status, caller)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.UpdateResponse[*models.VerificationRequest]{Success: true, Request: updated})
}

// respondError maps service errors onto the documented status codes and
// messages. Unknown errors surface as opaque 500s.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: ve.Error()})
	case errors.Is(err, services.ErrNotAuthorized):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Error: "Unauthorized: Admin access required"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Request not found"})
	default:
		log.Error("request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal server error"})
	}
}
