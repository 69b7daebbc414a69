package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/internal/requestdata"
	"github.com/promptform/promptform/internal/services"
)

type GenerationHandler struct {
	log               *logger.Logger
	generationService services.GenerationService
}

func NewGenerationHandler(baseLog *logger.Logger, generationService services.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		log:               baseLog.With("handler", "GenerationHandler"),
		generationService: generationService,
	}
}

type generateRequest struct {
	Description string `json:"description"`
}

// Generate turns a plain-language description into either a form schema or a
// clarification request. The result envelope's "type" field tells the client
// which branch it got.
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("description is required"))
		return
	}

	result, err := h.generationService.Generate(c.Request.Context(), userID, req.Description)
	if err != nil {
		h.log.Error("generation failed", "error", err, "user_id", userID.String())
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"result": result})
}

type clarifyRequest struct {
	Description string   `json:"description"`
	Questions   []string `json:"questions"`
	Answers     []string `json:"answers"`
}

// Clarify resubmits a description amended with answers to a prior
// clarification round. The response includes the amended description so the
// client can carry it into another round if the gateway asks again.
func (h *GenerationHandler) Clarify(c *gin.Context) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req clarifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("description is required"))
		return
	}

	result, amended, err := h.generationService.Clarify(c.Request.Context(), userID, req.Description, req.Questions, req.Answers)
	if err != nil {
		h.log.Error("clarification failed", "error", err, "user_id", userID.String())
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"result": result, "description": amended})
}
