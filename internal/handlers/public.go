package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/internal/services"
	"github.com/promptform/promptform/pkg/model"
	"github.com/promptform/promptform/pkg/render"
	"github.com/promptform/promptform/pkg/submit"
)

const submittedPage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Thanks</title></head>
<body><main><h1>Thanks!</h1><p>Your response has been recorded.</p></main></body>
</html>`

// PublicFormHandler serves the shareable link: the rendered form and its
// submission endpoint. No auth; respondents are anonymous.
type PublicFormHandler struct {
	log               *logger.Logger
	formService       services.FormService
	submissionService services.SubmissionService
	renderer          render.Renderer
}

func NewPublicFormHandler(baseLog *logger.Logger, formService services.FormService, submissionService services.SubmissionService, renderer render.Renderer) *PublicFormHandler {
	return &PublicFormHandler{
		log:               baseLog.With("handler", "PublicFormHandler"),
		formService:       formService,
		submissionService: submissionService,
		renderer:          renderer,
	}
}

// Render serves the live HTML form.
func (h *PublicFormHandler) Render(c *gin.Context) {
	formID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	form, err := h.formService.Get(c.Request.Context(), formID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if !form.AcceptingResponses {
		RespondServiceError(c, services.ErrFormClosed)
		return
	}

	schema, err := form.Schema()
	if err != nil {
		h.log.Error("decode stored schema failed", "error", err, "form_id", form.ID.String())
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
		return
	}

	page, err := h.renderer.Render(c.Request.Context(), schema, render.Options{
		Action: fmt.Sprintf("/f/%s/submissions", form.ID),
	})
	if err != nil {
		h.log.Error("render form failed", "error", err, "form_id", form.ID.String())
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
		return
	}
	c.Data(http.StatusOK, h.renderer.ContentType(), page)
}

// Submit accepts a response. Browser form posts get HTML back; on validation
// failure the form is re-rendered with the respondent's values and inline
// messages. JSON clients get the envelope instead.
func (h *PublicFormHandler) Submit(c *gin.Context) {
	formID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	answers, fromBrowser, err := h.readAnswers(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}

	stored, err := h.submissionService.Submit(c.Request.Context(), formID, answers)
	if err != nil {
		var verr *submit.ValidationError
		if fromBrowser && errors.As(err, &verr) {
			h.rerender(c, formID, answers, verr.Fields)
			return
		}
		if !errors.Is(err, services.ErrNotFound) && !errors.Is(err, services.ErrFormClosed) {
			h.log.Error("submit failed", "error", err, "form_id", formID.String())
		}
		RespondServiceError(c, err)
		return
	}

	if fromBrowser {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(submittedPage))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"submission": stored})
}

func (h *PublicFormHandler) readAnswers(c *gin.Context) (model.AnswerMap, bool, error) {
	contentType := c.ContentType()
	if strings.Contains(contentType, "application/json") {
		answers := make(model.AnswerMap)
		if err := c.ShouldBindJSON(&answers); err != nil {
			return nil, false, err
		}
		return answers, false, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, true, err
	}
	answers := make(model.AnswerMap, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			answers[key] = values[0]
		}
	}
	return answers, true, nil
}

// rerender rebuilds the HTML form with the respondent's values and the
// per-field messages so nothing they typed is lost.
func (h *PublicFormHandler) rerender(c *gin.Context, formID uuid.UUID, answers model.AnswerMap, fieldErrors model.ErrorMap) {
	form, err := h.formService.Get(c.Request.Context(), formID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	schema, err := form.Schema()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
		return
	}

	page, err := h.renderer.Render(c.Request.Context(), schema, render.Options{
		Action: fmt.Sprintf("/f/%s/submissions", form.ID),
		Values: answers,
		Errors: fieldErrors,
	})
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
		return
	}
	c.Data(http.StatusUnprocessableEntity, h.renderer.ContentType(), page)
}
