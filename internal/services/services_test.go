package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/internal/repos"
	"github.com/promptform/promptform/internal/types"
	"github.com/promptform/promptform/pkg/model"
	"github.com/promptform/promptform/pkg/submit"
)

type memFormRepo struct {
	forms map[uuid.UUID]*types.Form
}

func newMemFormRepo() *memFormRepo {
	return &memFormRepo{forms: make(map[uuid.UUID]*types.Form)}
}

func (r *memFormRepo) Create(ctx context.Context, tx *gorm.DB, form *types.Form) (*types.Form, error) {
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	r.forms[form.ID] = form
	return form, nil
}

func (r *memFormRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Form, error) {
	form, ok := r.forms[id]
	if !ok {
		return nil, repos.ErrNotFound
	}
	return form, nil
}

func (r *memFormRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Form, error) {
	var out []*types.Form
	for _, f := range r.forms {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *memFormRepo) SetAcceptingResponses(ctx context.Context, tx *gorm.DB, id uuid.UUID, accepting bool) error {
	form, ok := r.forms[id]
	if !ok {
		return repos.ErrNotFound
	}
	form.AcceptingResponses = accepting
	return nil
}

func (r *memFormRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if _, ok := r.forms[id]; !ok {
		return repos.ErrNotFound
	}
	delete(r.forms, id)
	return nil
}

type memSubmissionRepo struct {
	submissions map[uuid.UUID]*types.FormSubmission
	createErr   error
}

func newMemSubmissionRepo() *memSubmissionRepo {
	return &memSubmissionRepo{submissions: make(map[uuid.UUID]*types.FormSubmission)}
}

func (r *memSubmissionRepo) Create(ctx context.Context, tx *gorm.DB, sub *types.FormSubmission) (*types.FormSubmission, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	r.submissions[sub.ID] = sub
	return sub, nil
}

func (r *memSubmissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FormSubmission, error) {
	sub, ok := r.submissions[id]
	if !ok {
		return nil, repos.ErrNotFound
	}
	return sub, nil
}

func (r *memSubmissionRepo) ListByForm(ctx context.Context, tx *gorm.DB, formID uuid.UUID) ([]*types.FormSubmission, error) {
	var out []*types.FormSubmission
	for _, s := range r.submissions {
		if s.FormID == formID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memSubmissionRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if _, ok := r.submissions[id]; !ok {
		return repos.ErrNotFound
	}
	delete(r.submissions, id)
	return nil
}

func testSchema() model.FormSchema {
	return model.FormSchema{
		Title: "Contact",
		Fields: []model.FieldDefinition{
			{ID: "name", Label: "Name", Type: model.FieldTypeText, Required: true},
			{ID: "email", Label: "Email", Type: model.FieldTypeEmail, Required: true},
		},
	}
}

func seedForm(t *testing.T, repo *memFormRepo, ownerID uuid.UUID) *types.Form {
	t.Helper()
	form, err := types.NewForm(ownerID, testSchema())
	if err != nil {
		t.Fatalf("NewForm: %v", err)
	}
	created, err := repo.Create(context.Background(), nil, form)
	if err != nil {
		t.Fatalf("seed form: %v", err)
	}
	return created
}

func TestFormServiceOwnership(t *testing.T) {
	formRepo := newMemFormRepo()
	subRepo := newMemSubmissionRepo()
	svc := NewFormService(formRepo, subRepo, logger.NewNop())

	owner := uuid.New()
	stranger := uuid.New()
	form := seedForm(t, formRepo, owner)

	if _, err := svc.GetOwned(context.Background(), owner, form.ID); err != nil {
		t.Fatalf("owner GetOwned: %v", err)
	}
	if _, err := svc.GetOwned(context.Background(), stranger, form.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger GetOwned = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(context.Background(), stranger, form.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger Delete = %v, want ErrForbidden", err)
	}
	if err := svc.SetAccepting(context.Background(), stranger, form.ID, false); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger SetAccepting = %v, want ErrForbidden", err)
	}

	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v, want ErrNotFound", err)
	}
}

func TestFormServiceDeleteSubmissionChecksParentForm(t *testing.T) {
	formRepo := newMemFormRepo()
	subRepo := newMemSubmissionRepo()
	svc := NewFormService(formRepo, subRepo, logger.NewNop())

	owner := uuid.New()
	form := seedForm(t, formRepo, owner)

	record, err := types.NewFormSubmission(form.ID, model.Submission{
		FormID:      form.ID.String(),
		SchemaTitle: "Contact",
		Answers:     model.AnswerMap{"name": "Ada", "email": "ada@example.com"},
	})
	if err != nil {
		t.Fatalf("NewFormSubmission: %v", err)
	}
	stored, err := subRepo.Create(context.Background(), nil, record)
	if err != nil {
		t.Fatalf("seed submission: %v", err)
	}

	if err := svc.DeleteSubmission(context.Background(), uuid.New(), stored.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("stranger DeleteSubmission = %v, want ErrForbidden", err)
	}
	if err := svc.DeleteSubmission(context.Background(), owner, stored.ID); err != nil {
		t.Fatalf("owner DeleteSubmission: %v", err)
	}
	if _, err := subRepo.GetByID(context.Background(), nil, stored.ID); !errors.Is(err, repos.ErrNotFound) {
		t.Error("submission still present after delete")
	}
}

func TestSubmissionServiceStoresValidResponse(t *testing.T) {
	formRepo := newMemFormRepo()
	subRepo := newMemSubmissionRepo()
	svc := NewSubmissionService(formRepo, subRepo, logger.NewNop())

	form := seedForm(t, formRepo, uuid.New())

	stored, err := svc.Submit(context.Background(), form.ID, model.AnswerMap{
		"name":  "Ada",
		"email": "ada@example.com",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if stored.FormID != form.ID {
		t.Errorf("FormID = %s, want %s", stored.FormID, form.ID)
	}
	answers, err := stored.AnswerMap()
	if err != nil {
		t.Fatalf("AnswerMap: %v", err)
	}
	if answers["email"] != "ada@example.com" {
		t.Errorf("answers = %v", answers)
	}
}

func TestSubmissionServiceCollectsFieldFailures(t *testing.T) {
	formRepo := newMemFormRepo()
	subRepo := newMemSubmissionRepo()
	svc := NewSubmissionService(formRepo, subRepo, logger.NewNop())

	form := seedForm(t, formRepo, uuid.New())

	_, err := svc.Submit(context.Background(), form.ID, model.AnswerMap{
		"email": "not-an-email",
	})
	var verr *submit.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Submit = %v, want *submit.ValidationError", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("failed fields = %v, want name and email", verr.Fields)
	}
	if len(subRepo.submissions) != 0 {
		t.Error("invalid submission was persisted")
	}
}

func TestSubmissionServiceRejectsClosedForm(t *testing.T) {
	formRepo := newMemFormRepo()
	subRepo := newMemSubmissionRepo()
	svc := NewSubmissionService(formRepo, subRepo, logger.NewNop())

	form := seedForm(t, formRepo, uuid.New())
	form.AcceptingResponses = false

	_, err := svc.Submit(context.Background(), form.ID, model.AnswerMap{
		"name":  "Ada",
		"email": "ada@example.com",
	})
	if !errors.Is(err, ErrFormClosed) {
		t.Errorf("Submit = %v, want ErrFormClosed", err)
	}
}

type recordingGateway struct {
	lastDescription string
	result          model.GenerationResult
	err             error
}

func (g *recordingGateway) Generate(ctx context.Context, description string) (model.GenerationResult, error) {
	g.lastDescription = description
	return g.result, g.err
}

func TestGenerationServiceClarifyAmendsDescription(t *testing.T) {
	gw := &recordingGateway{
		result: model.FormResult(testSchema()),
	}
	svc := NewGenerationService(gw, logger.NewNop())

	questions := []string{"Should the phone number be optional?"}
	answers := []string{"Yes, make it optional."}

	result, amended, err := svc.Clarify(context.Background(), uuid.New(), "an anonymous feedback form", questions, answers)
	if err != nil {
		t.Fatalf("Clarify: %v", err)
	}
	if result.Kind() != model.ResultForm {
		t.Fatalf("kind = %q, want form", result.Kind())
	}
	if !strings.HasPrefix(amended, "an anonymous feedback form") {
		t.Errorf("amended description lost the original prefix: %q", amended)
	}
	if !strings.Contains(amended, "Clarifications:") || !strings.Contains(amended, answers[0]) {
		t.Errorf("amended description missing answers: %q", amended)
	}
	if gw.lastDescription != amended {
		t.Errorf("gateway received %q, want amended description", gw.lastDescription)
	}
}

func TestGenerationServiceClarifyRejectsIncompleteAnswers(t *testing.T) {
	svc := NewGenerationService(&recordingGateway{}, logger.NewNop())

	cases := []struct {
		name      string
		questions []string
		answers   []string
	}{
		{"no questions", nil, nil},
		{"count mismatch", []string{"a?", "b?"}, []string{"only one"}},
		{"blank answer", []string{"a?"}, []string{"   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Clarify(context.Background(), uuid.New(), "desc", tc.questions, tc.answers)
			if !errors.Is(err, ErrIncompleteAnswers) {
				t.Errorf("Clarify = %v, want ErrIncompleteAnswers", err)
			}
		})
	}
}
