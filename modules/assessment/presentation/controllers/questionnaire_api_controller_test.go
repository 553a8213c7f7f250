package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/formlane/assess/modules/assessment/domain/questionnaire"
	"github.com/formlane/assess/modules/assessment/importer"
	"github.com/formlane/assess/modules/assessment/services"
	"github.com/formlane/assess/pkg/application"
	"github.com/formlane/assess/pkg/eventbus"
	"github.com/formlane/assess/pkg/httpapi"
)

type fakeRepository struct{}

func (r *fakeRepository) Create(ctx context.Context, cmd questionnaire.CreateCommand) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (r *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (questionnaire.Questionnaire, error) {
	return questionnaire.Questionnaire{}, questionnaire.ErrNotFound
}

func (r *fakeRepository) GetPaginated(ctx context.Context, params *questionnaire.FindParams) ([]questionnaire.Questionnaire, int64, error) {
	return nil, 0, nil
}

func (r *fakeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return questionnaire.ErrNotFound
}

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	bus := eventbus.NewEventPublisher(logger)

	app := application.New(&application.ApplicationOptions{
		EventBus: bus,
		Logger:   logger,
	})
	repo := &fakeRepository{}
	app.RegisterServices(
		services.NewImportService(repo, bus),
		services.NewQuestionnaireService(repo, bus),
	)

	router := mux.NewRouter()
	NewQuestionnaireAPIController(app).Register(router)
	NewHealthController(app).Register(router)
	return router
}

func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httpapi.ErrorEnvelope {
	t.Helper()

	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestImport_NoFilePart(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	body, contentType := multipartBody(t, "", nil, map[string]string{"name": "Q"})

	req := httptest.NewRequest(http.MethodPost, "/assessments/api/questionnaires/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "IMPORT_NO_FILE", decodeEnvelope(t, rec).Code)
}

func TestImport_UnsupportedFileType(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	body, contentType := multipartBody(t, "logo.png", []byte("\x89PNG\r\n\x1a\nbinary"), nil)

	req := httptest.NewRequest(http.MethodPost, "/assessments/api/questionnaires/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "IMPORT_UNSUPPORTED_FILE_TYPE", decodeEnvelope(t, rec).Code)
}

func TestImport_MissingHeaders(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	body, contentType := multipartBody(t, "sheet.csv", []byte("section_title,step_title\nSafety,Training\n"), nil)

	req := httptest.NewRequest(http.MethodPost, "/assessments/api/questionnaires/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "IMPORT_MISSING_HEADERS", envelope.Code)
	require.Contains(t, envelope.Errors, "question_title")
	require.Contains(t, envelope.Errors, "rating_value_10")
}

func TestImport_ValidationErrorsAggregated(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	headers := strings.Join(importer.RequiredHeaders(), ",")
	// Two broken rows; every violation must come back in one response.
	sheet := headers + "\n" +
		strings.Repeat(",", len(importer.RequiredHeaders())-1) + "\n" +
		strings.Repeat(",", len(importer.RequiredHeaders())-1) + "\n"
	body, contentType := multipartBody(t, "sheet.csv", []byte(sheet), nil)

	req := httptest.NewRequest(http.MethodPost, "/assessments/api/questionnaires/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "IMPORT_VALIDATION_FAILED", envelope.Code)
	require.Contains(t, envelope.Errors, "Row 2: section_title is required")
	require.Contains(t, envelope.Errors, "Row 3: section_title is required")
}

func TestImport_MetadataTooLong(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	body, contentType := multipartBody(t, "sheet.csv", []byte("x"), map[string]string{
		"name": strings.Repeat("a", 300),
	})

	req := httptest.NewRequest(http.MethodPost, "/assessments/api/questionnaires/import", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.Equal(t, "IMPORT_BAD_REQUEST", envelope.Code)
	require.Equal(t, "max", envelope.Meta["name"])
}

func TestTemplate_ReturnsHeaderRow(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/assessments/api/questionnaires/template", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	require.Equal(t, strings.Join(importer.RequiredHeaders(), ",")+"\n", rec.Body.String())
}

func TestGetByID_InvalidUUID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/assessments/api/questionnaires/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_ID", decodeEnvelope(t, rec).Code)
}

func TestGetByID_NotFound(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/assessments/api/questionnaires/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "QUESTIONNAIRE_NOT_FOUND", decodeEnvelope(t, rec).Code)
}

func TestList_InvalidLimit(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/assessments/api/questionnaires?limit=abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_QUERY", decodeEnvelope(t, rec).Code)
}

func TestList_Empty(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/assessments/api/questionnaires", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items []json.RawMessage `json:"items"`
		Total int64             `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Empty(t, resp.Items)
	require.Zero(t, resp.Total)
}

func TestHealth_NoPoolConfigured(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
