package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promptform/promptform/internal/gateway"
	"github.com/promptform/promptform/internal/services"
	"github.com/promptform/promptform/pkg/submit"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	// Fields carries per-field validation messages when Code is
	// "validation_failed".
	Fields map[string]string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError converts every collaborator failure into one of the
// API's public kinds. Anything unmapped becomes a plain 500 without leaking
// internals.
func RespondServiceError(c *gin.Context, err error) {
	var verr *submit.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{
			Error: APIError{
				Message: "some answers need attention",
				Code:    "validation_failed",
				Fields:  verr.Fields,
			},
		})
		return
	}

	var gerr *gateway.Error
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case gateway.KindRateLimited:
			RespondError(c, http.StatusTooManyRequests, "rate_limited",
				errors.New("the generation service is busy, try again shortly"))
		case gateway.KindQuotaExhausted:
			RespondError(c, http.StatusServiceUnavailable, "quota_exhausted",
				errors.New("the generation service quota is exhausted"))
		case gateway.KindMalformed:
			RespondError(c, http.StatusBadGateway, "malformed_generation",
				errors.New("the generation service returned an unusable response"))
		default:
			RespondError(c, http.StatusServiceUnavailable, "generation_unavailable",
				errors.New("the generation service is unavailable"))
		}
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", errors.New("not found"))
	case errors.Is(err, services.ErrForbidden):
		RespondError(c, http.StatusForbidden, "forbidden", errors.New("forbidden"))
	case errors.Is(err, services.ErrFormClosed):
		RespondError(c, http.StatusConflict, "form_closed",
			errors.New("this form is no longer accepting responses"))
	case errors.Is(err, services.ErrIncompleteAnswers):
		RespondError(c, http.StatusBadRequest, "incomplete_answers",
			errors.New("every clarification question needs a non-empty answer"))
	default:
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	}
}
