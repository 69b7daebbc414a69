package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/pkg/model"
	"github.com/promptform/promptform/pkg/negotiate"
)

// GenerationService fronts the schema gateway for the HTTP flow. Each request
// carries one negotiation round: the first call sends the raw description,
// and when that comes back as a clarification the client answers and calls
// Clarify, which amends the description and resubmits.
type GenerationService interface {
	Generate(ctx context.Context, userID uuid.UUID, description string) (model.GenerationResult, error)
	// Clarify resubmits a description amended with the answers to a prior
	// clarification round. It returns the amended description alongside the
	// new result so the client can carry it into a further round.
	Clarify(ctx context.Context, userID uuid.UUID, description string, questions, answers []string) (model.GenerationResult, string, error)
}

type generationService struct {
	gateway negotiate.Gateway
	group   singleflight.Group
	log     *logger.Logger
}

func NewGenerationService(gateway negotiate.Gateway, baseLog *logger.Logger) GenerationService {
	return &generationService{
		gateway: gateway,
		log:     baseLog.With("service", "GenerationService"),
	}
}

func (s *generationService) Generate(ctx context.Context, userID uuid.UUID, description string) (model.GenerationResult, error) {
	// Double-submits of the same description share one in-flight gateway
	// call instead of burning a second round of provider quota.
	key := userID.String() + "\x00" + description
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.gateway.Generate(ctx, description)
	})
	if err != nil {
		return model.GenerationResult{}, err
	}
	if shared {
		s.log.Debug("generation request coalesced", "user_id", userID.String())
	}
	return v.(model.GenerationResult), nil
}

func (s *generationService) Clarify(ctx context.Context, userID uuid.UUID, description string, questions, answers []string) (model.GenerationResult, string, error) {
	if len(questions) == 0 || len(answers) != len(questions) {
		return model.GenerationResult{}, "", ErrIncompleteAnswers
	}
	for _, answer := range answers {
		if strings.TrimSpace(answer) == "" {
			return model.GenerationResult{}, "", ErrIncompleteAnswers
		}
	}

	amended := negotiate.Amend(description, answers)
	result, err := s.Generate(ctx, userID, amended)
	if err != nil {
		return model.GenerationResult{}, "", err
	}
	return result, amended, nil
}
