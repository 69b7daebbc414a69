package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	json "github.com/goccy/go-json"

	"github.com/promptform/promptform/internal/config"
	"github.com/promptform/promptform/internal/gateway"
	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/pkg/model"
	"github.com/promptform/promptform/pkg/negotiate"
	"github.com/promptform/promptform/pkg/renderers/tui"
	"github.com/promptform/promptform/pkg/session"
	"github.com/promptform/promptform/pkg/submit"
)

func main() {
	description := flag.String("description", "", "plain-language description of the form to build")
	output := flag.String("output", "", "write the filled submission to this file (stdout if empty)")
	schemaOnly := flag.Bool("schema-only", false, "print the generated schema without filling it in")
	flag.Parse()

	if err := run(*description, *output, *schemaOnly); err != nil {
		if errors.Is(err, tui.ErrAborted) || errors.Is(err, negotiate.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "aborted")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(description, output string, schemaOnly bool) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	log, err := logger.New("production")
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()

	description = strings.TrimSpace(description)
	if description == "" {
		prompt := &survey.Multiline{Message: "Describe the form you want to build:"}
		if err := survey.AskOne(prompt, &description, survey.WithValidator(survey.Required)); err != nil {
			return translateSurveyErr(err)
		}
	}

	client, err := gateway.NewClient(cfg.Gateway, log)
	if err != nil {
		return err
	}

	negotiator := negotiate.New(client, &surveyCollector{})
	schema, err := negotiator.Run(ctx, description)
	if err != nil {
		var limitErr *negotiate.RoundLimitError
		if errors.As(err, &limitErr) {
			return fmt.Errorf("no agreement after %d clarification rounds; try a more specific description", limitErr.Rounds)
		}
		return err
	}

	if schemaOnly {
		return printJSON(schema, output)
	}

	renderer, err := tui.New()
	if err != nil {
		return err
	}
	state := session.NewState(nil, nil)
	if err := renderer.Fill(ctx, schema, state); err != nil {
		return err
	}

	pipeline := submit.NewPipeline(nil)
	submission, err := pipeline.Submit(ctx, "", schema, state.Answers())
	if err != nil {
		return err
	}
	return printJSON(submission, output)
}

// surveyCollector answers clarification rounds interactively.
type surveyCollector struct{}

func (surveyCollector) Collect(ctx context.Context, req model.ClarificationRequest) ([]string, error) {
	if strings.TrimSpace(req.Contradiction) != "" {
		fmt.Printf("The description needs clarification: %s\n", req.Contradiction)
	}

	answers := make([]string, 0, len(req.Questions))
	for _, question := range req.Questions {
		var answer string
		prompt := &survey.Input{Message: question}
		if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required)); err != nil {
			return nil, translateSurveyErr(err)
		}
		answers = append(answers, answer)
	}
	return answers, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return negotiate.ErrCancelled
	}
	return err
}

func printJSON(v any, output string) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if output != "" {
		if err := os.WriteFile(output, append(raw, '\n'), 0o644); err != nil {
			return err
		}
		fmt.Printf("written to %s\n", output)
		return nil
	}
	fmt.Println(string(raw))
	return nil
}
