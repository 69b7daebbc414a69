package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/internal/requestdata"
	"github.com/promptform/promptform/internal/services"
	"github.com/promptform/promptform/internal/types"
	"github.com/promptform/promptform/pkg/model"
	"github.com/promptform/promptform/pkg/renderers/vanilla"
	"github.com/promptform/promptform/pkg/submit"
)

type stubFormService struct {
	form *types.Form
}

func (s *stubFormService) Create(ctx context.Context, ownerID uuid.UUID, schema model.FormSchema) (*types.Form, error) {
	form, err := types.NewForm(ownerID, schema)
	if err != nil {
		return nil, err
	}
	form.ID = uuid.New()
	s.form = form
	return form, nil
}

func (s *stubFormService) Get(ctx context.Context, id uuid.UUID) (*types.Form, error) {
	if s.form == nil || s.form.ID != id {
		return nil, services.ErrNotFound
	}
	return s.form, nil
}

func (s *stubFormService) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*types.Form, error) {
	form, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if form.OwnerID != ownerID {
		return nil, services.ErrForbidden
	}
	return form, nil
}

func (s *stubFormService) List(ctx context.Context, ownerID uuid.UUID) ([]*types.Form, error) {
	if s.form != nil && s.form.OwnerID == ownerID {
		return []*types.Form{s.form}, nil
	}
	return nil, nil
}

func (s *stubFormService) SetAccepting(ctx context.Context, ownerID, id uuid.UUID, accepting bool) error {
	form, err := s.GetOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	form.AcceptingResponses = accepting
	return nil
}

func (s *stubFormService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.GetOwned(ctx, ownerID, id); err != nil {
		return err
	}
	s.form = nil
	return nil
}

func (s *stubFormService) ListSubmissions(ctx context.Context, ownerID, formID uuid.UUID) ([]*types.FormSubmission, error) {
	_, err := s.GetOwned(ctx, ownerID, formID)
	return nil, err
}

func (s *stubFormService) DeleteSubmission(ctx context.Context, ownerID, submissionID uuid.UUID) error {
	return services.ErrNotFound
}

type stubSubmissionService struct {
	forms *stubFormService
	last  *types.FormSubmission
}

func (s *stubSubmissionService) Submit(ctx context.Context, formID uuid.UUID, answers model.AnswerMap) (*types.FormSubmission, error) {
	form, err := s.forms.Get(ctx, formID)
	if err != nil {
		return nil, err
	}
	if !form.AcceptingResponses {
		return nil, services.ErrFormClosed
	}
	schema, err := form.Schema()
	if err != nil {
		return nil, err
	}
	pipeline := submit.NewPipeline(nil)
	submission, err := pipeline.Submit(ctx, formID.String(), schema, answers)
	if err != nil {
		return nil, err
	}
	record, err := types.NewFormSubmission(formID, *submission)
	if err != nil {
		return nil, err
	}
	record.ID = uuid.New()
	s.last = record
	return record, nil
}

// identityMiddleware stands in for the JWT middleware in tests.
func identityMiddleware(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := requestdata.WithRequestData(c.Request.Context(), requestdata.RequestData{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func testRouter(t *testing.T, userID uuid.UUID) (*gin.Engine, *stubFormService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	formSvc := &stubFormService{}
	subSvc := &stubSubmissionService{forms: formSvc}

	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("vanilla.New: %v", err)
	}

	log := logger.NewNop()
	formHandler := NewFormHandler(log, formSvc)
	publicHandler := NewPublicFormHandler(log, formSvc, subSvc, renderer)

	router := gin.New()
	router.GET("/f/:id", publicHandler.Render)
	router.POST("/f/:id/submissions", publicHandler.Submit)

	api := router.Group("/api")
	api.Use(identityMiddleware(userID))
	api.POST("/forms", formHandler.Create)
	api.GET("/forms/:id", formHandler.Get)
	api.PATCH("/forms/:id/accepting", formHandler.SetAccepting)

	return router, formSvc
}

func seedForm(t *testing.T, formSvc *stubFormService, ownerID uuid.UUID) *types.Form {
	t.Helper()
	form, err := formSvc.Create(context.Background(), ownerID, model.FormSchema{
		Title: "Contact",
		Fields: []model.FieldDefinition{
			{ID: "name", Label: "Name", Type: model.FieldTypeText, Required: true},
			{ID: "email", Label: "Email", Type: model.FieldTypeEmail, Required: true},
		},
	})
	if err != nil {
		t.Fatalf("seed form: %v", err)
	}
	return form
}

func TestCreateFormRejectsInvalidSchema(t *testing.T) {
	router, _ := testRouter(t, uuid.New())

	body := `{"title":"","fields":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/forms", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != "invalid_schema" {
		t.Errorf("code = %q, want invalid_schema", envelope.Error.Code)
	}
}

func TestPublicRenderServesHTML(t *testing.T) {
	owner := uuid.New()
	router, formSvc := testRouter(t, owner)
	form := seedForm(t, formSvc, owner)

	req := httptest.NewRequest(http.MethodGet, "/f/"+form.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	html := rec.Body.String()
	for _, marker := range []string{"Contact", `name="name"`, `name="email"`, form.ID.String() + "/submissions"} {
		if !strings.Contains(html, marker) {
			t.Errorf("rendered page missing %q", marker)
		}
	}
}

func TestPublicRenderClosedForm(t *testing.T) {
	owner := uuid.New()
	router, formSvc := testRouter(t, owner)
	form := seedForm(t, formSvc, owner)
	form.AcceptingResponses = false

	req := httptest.NewRequest(http.MethodGet, "/f/"+form.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestBrowserSubmitRerendersWithErrors(t *testing.T) {
	owner := uuid.New()
	router, formSvc := testRouter(t, owner)
	form := seedForm(t, formSvc, owner)

	body := "name=Ada&email=not-an-email"
	req := httptest.NewRequest(http.MethodPost, "/f/"+form.ID.String()+"/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	html := rec.Body.String()
	if !strings.Contains(html, `value="Ada"`) {
		t.Error("re-rendered page lost the valid answer")
	}
	if !strings.Contains(html, "promptform-error") {
		t.Error("re-rendered page has no inline error message")
	}
}

func TestBrowserSubmitSuccess(t *testing.T) {
	owner := uuid.New()
	router, formSvc := testRouter(t, owner)
	form := seedForm(t, formSvc, owner)

	body := "name=Ada&email=ada%40example.com"
	req := httptest.NewRequest(http.MethodPost, "/f/"+form.ID.String()+"/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "recorded") {
		t.Error("missing confirmation page")
	}
}

func TestJSONSubmitValidationEnvelope(t *testing.T) {
	owner := uuid.New()
	router, formSvc := testRouter(t, owner)
	form := seedForm(t, formSvc, owner)

	body := `{"email":"nope"}`
	req := httptest.NewRequest(http.MethodPost, "/f/"+form.ID.String()+"/submissions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Error.Code != "validation_failed" {
		t.Errorf("code = %q, want validation_failed", envelope.Error.Code)
	}
	if len(envelope.Error.Fields) != 2 {
		t.Errorf("fields = %v, want name and email entries", envelope.Error.Fields)
	}
}

func TestGetFormOtherOwnerForbidden(t *testing.T) {
	owner := uuid.New()
	router, formSvc := testRouter(t, uuid.New())
	form := seedForm(t, formSvc, owner)

	req := httptest.NewRequest(http.MethodGet, "/api/forms/"+form.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
