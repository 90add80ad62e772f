package handlers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/ops-portal/internal/api/dto"
	"github.com/spec-kit/ops-portal/internal/auth"
	"github.com/spec-kit/ops-portal/internal/scope"
	apperrors "github.com/spec-kit/ops-portal/pkg/util"
)

const dateLayout = "2006-01-02"

// subject returns the scoping input of the authenticated caller.
func subject(c *fiber.Ctx) (scope.Subject, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return scope.Subject{}, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Subject(), nil
}

// pathID returns the :id route parameter. Row ids are UUIDs, so anything else
// cannot name an existing resource.
func pathID(c *fiber.Ctx, resource string) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return id, nil
}

// bind parses and validates a JSON body.
func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	if t, err := time.Parse(dateLayout, val); err == nil {
		return &t
	}
	return parseTime(val)
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func optionalQuery(c *fiber.Ctx, key string) *string {
	val := strings.TrimSpace(c.Query(key))
	if val == "" {
		return nil
	}
	return &val
}

func parseBool(val string) *bool {
	if val == "" {
		return nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil
	}
	return &b
}

// page converts page/page_size query values to limit and offset.
func page(c *fiber.Ctx) (limit, offset int) {
	p := parseInt(c.Query("page"), 1)
	size := parseInt(c.Query("page_size"), 50)
	if size > 500 {
		size = 500
	}
	return size, (p - 1) * size
}

// sendCSV writes buf as a downloadable CSV file.
func sendCSV(c *fiber.Ctx, filename string, buf *bytes.Buffer) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}
