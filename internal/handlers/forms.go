package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/internal/requestdata"
	"github.com/promptform/promptform/internal/services"
	"github.com/promptform/promptform/pkg/model"
)

type FormHandler struct {
	log         *logger.Logger
	formService services.FormService
}

func NewFormHandler(baseLog *logger.Logger, formService services.FormService) *FormHandler {
	return &FormHandler{
		log:         baseLog.With("handler", "FormHandler"),
		formService: formService,
	}
}

// Create persists an accepted schema. The body is the schema itself, usually
// the form branch of a generation result the client just received.
func (h *FormHandler) Create(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var schema model.FormSchema
	if err := c.ShouldBindJSON(&schema); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	if err := schema.Validate(); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_schema", err)
		return
	}

	form, err := h.formService.Create(c.Request.Context(), userID, schema)
	if err != nil {
		h.log.Error("create form failed", "error", err, "user_id", userID.String())
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"form": form})
}

func (h *FormHandler) List(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	forms, err := h.formService.List(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list forms failed", "error", err, "user_id", userID.String())
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"forms": forms})
}

func (h *FormHandler) Get(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	formID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	form, err := h.formService.GetOwned(c.Request.Context(), userID, formID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"form": form})
}

type setAcceptingRequest struct {
	AcceptingResponses *bool `json:"accepting_responses"`
}

// SetAccepting flips whether the shareable link takes new responses. The
// schema itself stays immutable.
func (h *FormHandler) SetAccepting(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	formID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setAcceptingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AcceptingResponses == nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("accepting_responses is required"))
		return
	}

	if err := h.formService.SetAccepting(c.Request.Context(), userID, formID, *req.AcceptingResponses); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"accepting_responses": *req.AcceptingResponses})
}

func (h *FormHandler) Delete(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	formID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.formService.Delete(c.Request.Context(), userID, formID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FormHandler) ListSubmissions(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	formID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	subs, err := h.formService.ListSubmissions(c.Request.Context(), userID, formID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"submissions": subs})
}

func (h *FormHandler) DeleteSubmission(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.formService.DeleteSubmission(c.Request.Context(), userID, submissionID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
