package negotiate

import (
	"context"
	"errors"
	"fmt"

	"github.com/promptform/promptform/pkg/model"
)

// DefaultMaxRounds caps how many clarification rounds a single negotiation
// may go through before giving up. Nothing upstream bounds the loop, so the
// cap prevents two stubborn parties from negotiating forever.
const DefaultMaxRounds = 5

// ErrCancelled is returned when the user abandons a pending clarification.
// The prior UI state is restored by the caller; nothing is resubmitted.
var ErrCancelled = errors.New("negotiate: cancelled")

// RoundLimitError reports that the clarification cap was reached without the
// gateway producing a usable form.
type RoundLimitError struct {
	Rounds int
}

func (e *RoundLimitError) Error() string {
	return fmt.Sprintf("negotiate: no usable form after %d clarification round(s)", e.Rounds)
}

// Gateway produces a GenerationResult from a natural-language description.
type Gateway interface {
	Generate(ctx context.Context, description string) (model.GenerationResult, error)
}

// AnswerCollector gathers one free-text answer per clarification question.
// Implementations block until every answer is present (survey prompts in the
// CLI) and report ErrCancelled when the user backs out.
type AnswerCollector interface {
	Collect(ctx context.Context, req model.ClarificationRequest) ([]string, error)
}

// Option configures a Negotiator.
type Option func(*Negotiator)

// WithMaxRounds overrides the clarification round cap.
func WithMaxRounds(rounds int) Option {
	return func(n *Negotiator) {
		if rounds > 0 {
			n.maxRounds = rounds
		}
	}
}

// Negotiator drives the generate -> clarify -> amend -> retry loop. Requests
// are strictly sequential: a new generation attempt only starts after the
// prior response has been consumed.
type Negotiator struct {
	gateway   Gateway
	collector AnswerCollector
	maxRounds int
}

// New constructs a Negotiator over a gateway and an answer collector.
func New(gateway Gateway, collector AnswerCollector, options ...Option) *Negotiator {
	n := &Negotiator{
		gateway:   gateway,
		collector: collector,
		maxRounds: DefaultMaxRounds,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(n)
	}
	return n
}

// Run negotiates until the gateway returns a form, the user cancels, or the
// round cap is hit. Gateway errors pass through untouched so callers can map
// them to their own error kinds.
func (n *Negotiator) Run(ctx context.Context, description string) (model.FormSchema, error) {
	sess := Start(description)

	for {
		if err := ctx.Err(); err != nil {
			return model.FormSchema{}, err
		}

		result, err := n.gateway.Generate(ctx, sess.Description)
		if err != nil {
			return model.FormSchema{}, err
		}

		if schema, ok := result.Form(); ok {
			return schema, nil
		}

		clarification, ok := result.Clarification()
		if !ok {
			return model.FormSchema{}, fmt.Errorf("negotiate: gateway returned neither form nor clarification")
		}

		if sess.Round >= n.maxRounds {
			return model.FormSchema{}, &RoundLimitError{Rounds: sess.Round}
		}

		sess, err = sess.ReceiveClarification(clarification)
		if err != nil {
			return model.FormSchema{}, err
		}

		answers, err := n.collector.Collect(ctx, clarification)
		if err != nil {
			if errors.Is(err, ErrCancelled) {
				sess = sess.Cancel()
			}
			return model.FormSchema{}, err
		}

		sess, err = sess.SubmitAnswers(answers)
		if err != nil {
			return model.FormSchema{}, err
		}
	}
}
