package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-portal/internal/importer"
	"github.com/spec-kit/ops-portal/internal/service"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

// ImportsHandler accepts spreadsheet uploads.
type ImportsHandler struct {
	imports *service.ImportService
}

// NewImportsHandler constructs handler.
func NewImportsHandler(imports *service.ImportService) *ImportsHandler {
	return &ImportsHandler{imports: imports}
}

// Upload handles POST /imports/:kind with a multipart "file" field.
func (h *ImportsHandler) Upload(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewValidationError("file is required", map[string]any{"field": "file"})
	}
	file, err := header.Open()
	if err != nil {
		return apperrors.NewValidationError("unreadable upload", nil)
	}
	defer file.Close()

	result, err := h.imports.Import(c.UserContext(), actor.User, importer.Kind(c.Params("kind")), file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}
