package handlers

import (
	"time"

	"github.com/ecop-onboarding/backend/internal/compliance"
	"github.com/ecop-onboarding/backend/internal/http/dto"
	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ComplianceHandler struct {
	oracle compliance.Oracle
	log    *zap.Logger
}

func NewComplianceHandler(oracle compliance.Oracle, log *zap.Logger) *ComplianceHandler {
	return &ComplianceHandler{oracle: oracle, log: log}
}

// Get reads the compliance NFT state for a wallet and derives its status.
func (h *ComplianceHandler) Get(c *fiber.Ctx) error {
	address := c.Params("address")
	if !models.IsValidAddress(address) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid Ethereum address"})
	}
	if h.oracle == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Error: "Compliance oracle not configured"})
	}

	snap, err := h.oracle.Snapshot(c.Context(), models.NormalizeAddress(address))
	if err != nil {
		h.log.Error("compliance read failed", zap.String("address", models.MaskAddress(address)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal server error"})
	}

	status := compliance.DeriveStatus(*snap)
	resp := fiber.Map{
		"address":     models.NormalizeAddress(address),
		"status":      status,
		"isCompliant": snap.IsCompliant,
		"expiresSoon": compliance.ExpiresSoon(*snap, time.Now()),
	}
	if snap.TokenID != nil {
		resp["tokenId"] = snap.TokenID.String()
	}
	if snap.ValidUntil > 0 {
		resp["validUntil"] = snap.ValidUntil
	}
	return c.JSON(resp)
}
