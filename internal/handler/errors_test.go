package handler

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/rubrica-dev/rubrica-api/internal/service"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"malformed id", service.ErrInvalidID, fiber.StatusBadRequest},
		{"forbidden", service.ErrForbidden, fiber.StatusForbidden},
		{"locked evaluation", service.ErrEvaluationLocked, fiber.StatusForbidden},
		{"template not found", service.ErrTemplateNotFound, fiber.StatusNotFound},
		{"evaluation not found", service.ErrEvaluationNotFound, fiber.StatusNotFound},
		{"group not found", service.ErrGroupNotFound, fiber.StatusNotFound},
		{"unexpected", errors.New("boom"), fiber.StatusInternalServerError},
	}

	logger := zerolog.New(io.Discard)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				return respondError(c, logger, tc.err)
			})

			response, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
			require.NoError(t, err)
			defer response.Body.Close()
			require.Equal(t, tc.status, response.StatusCode)
		})
	}
}
