package handlers

import (
	"errors"
	"io/fs"

	"github.com/ecop-onboarding/backend/internal/http/dto"
	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/ecop-onboarding/backend/internal/schema"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type SchemaHandler struct {
	loader schema.Loader
	log    *zap.Logger
}

func NewSchemaHandler(loader schema.Loader, log *zap.Logger) *SchemaHandler {
	return &SchemaHandler{loader: loader, log: log}
}

// schemaName maps a verification kind onto its schema document name.
func schemaName(actor string) (string, bool) {
	switch actor {
	case models.KindPerson:
		return "personas", true
	case models.KindInstitution:
		return "institutions", true
	}
	return "", false
}

// Get returns the form definition for a verification kind: the raw field
// rows plus the rendered controls grouped by category.
func (h *SchemaHandler) Get(c *fiber.Ctx) error {
	name, ok := schemaName(c.Params("actor"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid verification kind. Must be PERSON or INSTITUTION"})
	}

	form, err := h.loader.Load(c.Context(), name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Schema not found"})
		}
		h.log.Error("schema load failed", zap.String("name", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "Internal server error"})
	}

	return c.JSON(fiber.Map{
		"actor":  form.Actor,
		"fields": form.Fields,
		"groups": schema.BuildControls(form),
	})
}
