package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/deskops/support-desk/internal/api/dto"
	apperrors "github.com/deskops/support-desk/pkg/util/errorutil"
)

// parseBody decodes a JSON body and runs its validate tags. An empty body
// decodes to the zero value.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(out); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	return dto.Validate(out)
}

// parseID reads a positive numeric path parameter. Anything else cannot
// name a row, so it is reported as not found.
func parseID(c *fiber.Ctx, param, resource string) (int64, error) {
	raw := c.Params(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewNotFound(resource, map[string]any{"id": raw})
	}
	return id, nil
}
