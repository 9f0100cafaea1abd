package handlers

import (
	"github.com/ecop-onboarding/backend/internal/http/dto"
	"github.com/ecop-onboarding/backend/internal/middleware"
	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/ecop-onboarding/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CashHandler struct {
	requests *services.RequestService
	log      *zap.Logger
}

func NewCashHandler(requests *services.RequestService, log *zap.Logger) *CashHandler {
	return &CashHandler{requests: requests, log: log}
}

func (h *CashHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitCashRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request"})
	}

	created, err := h.requests.SubmitCash(c.Context(), req.Address, req.Direction, req.AmountWei, req.BankRef, req.Token)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SubmitResponse{
		Success:   true,
		RequestID: created.ID,
		Status:    created.Status,
	})
}

func (h *CashHandler) List(c *fiber.Ctx) error {
	rows, err := h.requests.ListCash(c.Context(), middleware.GetCaller(c), c.Query("direction"), c.Query("status"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse[models.CashWithUser]{Requests: rows})
}

func (h *CashHandler) UpdateStatus(c *fiber.Ctx) error {
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

	updated, err := h.requests.UpdateCashStatus(c.Context(), id, req.Status, caller)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.UpdateResponse[*models.CashRequest]{Success: true, Request: updated})
}
