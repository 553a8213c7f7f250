package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/formlane/assess/modules/assessment/domain/questionnaire"
	"github.com/formlane/assess/modules/assessment/importer"
	"github.com/formlane/assess/modules/assessment/services"
	"github.com/formlane/assess/pkg/application"
	"github.com/formlane/assess/pkg/composables"
	"github.com/formlane/assess/pkg/configuration"
	"github.com/formlane/assess/pkg/constants"
	"github.com/formlane/assess/pkg/httpapi"
)

type QuestionnaireAPIController struct {
	app            application.Application
	imports        *services.ImportService
	questionnaires *services.QuestionnaireService
	apiPrefix      string
}

func NewQuestionnaireAPIController(app application.Application) application.Controller {
	return &QuestionnaireAPIController{
		app:            app,
		imports:        app.Service(services.ImportService{}).(*services.ImportService),
		questionnaires: app.Service(services.QuestionnaireService{}).(*services.QuestionnaireService),
		apiPrefix:      "/assessments/api",
	}
}

func (c *QuestionnaireAPIController) Key() string {
	return c.apiPrefix
}

func (c *QuestionnaireAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/questionnaires/import", c.Import).Methods(http.MethodPost)
	api.HandleFunc("/questionnaires/template", c.Template).Methods(http.MethodGet)
	api.HandleFunc("/questionnaires", c.List).Methods(http.MethodGet)
	api.HandleFunc("/questionnaires/{id}", c.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/questionnaires/{id}", c.Delete).Methods(http.MethodDelete)
}

type importForm struct {
	Name        string `validate:"max=255"`
	Description string `validate:"max=4000"`
	Guidelines  string `validate:"max=4000"`
}

type importResponse struct {
	QuestionnaireID string `json:"questionnaire_id"`
	Sections        int    `json:"sections"`
	Steps           int    `json:"steps"`
	Questions       int    `json:"questions"`
	RatingScales    int    `json:"rating_scales"`
	Associations    int    `json:"associations"`
}

func (c *QuestionnaireAPIController) Import(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	if err := r.ParseMultipartForm(conf.MaxUploadMemory); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_BAD_REQUEST", "failed to parse multipart form", nil)
		return
	}

	form := importForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Guidelines:  strings.TrimSpace(r.FormValue("guidelines")),
	}
	if err := constants.Validate.Struct(form); err != nil {
		meta := map[string]string{}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				meta[strings.ToLower(fe.Field())] = fe.Tag()
			}
		}
		_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_BAD_REQUEST", "invalid questionnaire metadata", meta)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_NO_FILE", "no file provided", nil)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, conf.MaxUploadSize+1))
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_BAD_REQUEST", "failed to read uploaded file", nil)
		return
	}
	if int64(len(data)) > conf.MaxUploadSize {
		_ = httpapi.WriteError(w, http.StatusRequestEntityTooLarge, "IMPORT_FILE_TOO_LARGE", "uploaded file exceeds the size limit", nil)
		return
	}

	result, err := c.imports.ImportCSV(r.Context(), services.ImportInput{
		Filename:    header.Filename,
		Data:        data,
		Name:        form.Name,
		Description: form.Description,
		Guidelines:  form.Guidelines,
	})
	if err != nil {
		writeImportError(w, err)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusCreated, importResponse{
		QuestionnaireID: result.QuestionnaireID.String(),
		Sections:        result.Sections,
		Steps:           result.Steps,
		Questions:       result.Questions,
		RatingScales:    result.RatingScales,
		Associations:    result.Associations,
	})
}

// writeImportError maps pipeline failures onto the API error envelope. All
// row violations travel in one response so a sheet can be fixed in a single
// pass.
func writeImportError(w http.ResponseWriter, err error) {
	var (
		parseErr      *importer.ParseError
		missingErr    *importer.MissingHeadersError
		validationErr *importer.ValidationError
	)
	switch {
	case errors.Is(err, importer.ErrNoFile):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_NO_FILE", err.Error(), nil)
	case errors.Is(err, importer.ErrUnsupportedFileType):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_UNSUPPORTED_FILE_TYPE", err.Error(), nil)
	case errors.As(err, &parseErr):
		_ = httpapi.WriteError(w, http.StatusBadRequest, "IMPORT_PARSE_FAILED", parseErr.Error(), nil)
	case errors.As(err, &missingErr):
		_ = httpapi.WriteValidationError(w, http.StatusUnprocessableEntity, "IMPORT_MISSING_HEADERS", missingErr.Error(), missingErr.Headers)
	case errors.As(err, &validationErr):
		_ = httpapi.WriteValidationError(w, http.StatusUnprocessableEntity, "IMPORT_VALIDATION_FAILED", validationErr.Error(), validationErr.Errors)
	case errors.Is(err, questionnaire.ErrNameTaken):
		_ = httpapi.WriteError(w, http.StatusConflict, "QUESTIONNAIRE_NAME_TAKEN", err.Error(), nil)
	default:
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "IMPORT_FAILED", "failed to import questionnaire", nil)
	}
}

// Template serves an empty sheet carrying the full required header row.
func (c *QuestionnaireAPIController) Template(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="questionnaire-template.csv"`)
	_, _ = w.Write([]byte(strings.Join(importer.RequiredHeaders(), ",") + "\n"))
}

type questionnaireListItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type questionnaireListResponse struct {
	Items []questionnaireListItem `json:"items"`
	Total int64                   `json:"total"`
}

func (c *QuestionnaireAPIController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	params := &questionnaire.FindParams{
		Q:     r.URL.Query().Get("q"),
		Limit: conf.PageSize,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > conf.MaxPageSize {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "limit is invalid", nil)
			return
		}
		params.Limit = limit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_QUERY", "offset is invalid", nil)
			return
		}
		params.Offset = offset
	}

	items, total, err := c.questionnaires.GetPaginated(r.Context(), params)
	if err != nil {
		logError(r, err)
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to list questionnaires", nil)
		return
	}

	resp := questionnaireListResponse{
		Items: make([]questionnaireListItem, 0, len(items)),
		Total: total,
	}
	for _, q := range items {
		resp.Items = append(resp.Items, questionnaireListItem{
			ID:          q.ID().String(),
			Name:        q.Name(),
			Description: q.Description(),
			CreatedAt:   q.CreatedAt().UTC().Format(time.RFC3339),
			UpdatedAt:   q.UpdatedAt().UTC().Format(time.RFC3339),
		})
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, resp)
}

type questionRatingResponse struct {
	ScaleID     string `json:"scale_id"`
	Value       int    `json:"value"`
	Description string `json:"description"`
}

type questionResponse struct {
	ID         string                   `json:"id"`
	Title      string                   `json:"title"`
	Text       string                   `json:"text"`
	Context    string                   `json:"context,omitempty"`
	OrderIndex int                      `json:"order_index"`
	Ratings    []questionRatingResponse `json:"ratings"`
}

type stepResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	OrderIndex int                `json:"order_index"`
	Questions  []questionResponse `json:"questions"`
}

type sectionResponse struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	OrderIndex int            `json:"order_index"`
	Steps      []stepResponse `json:"steps"`
}

type ratingScaleResponse struct {
	ID          string `json:"id"`
	Value       int    `json:"value"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index"`
}

type questionnaireResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Guidelines   string                `json:"guidelines"`
	Sections     []sectionResponse     `json:"sections"`
	RatingScales []ratingScaleResponse `json:"rating_scales"`
	CreatedAt    string                `json:"created_at"`
	UpdatedAt    string                `json:"updated_at"`
}

func (c *QuestionnaireAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id must be a UUID", nil)
		return
	}

	q, err := c.questionnaires.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, questionnaire.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "QUESTIONNAIRE_NOT_FOUND", err.Error(), nil)
			return
		}
		logError(r, err)
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to load questionnaire", nil)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, toQuestionnaireResponse(q))
}

func (c *QuestionnaireAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_ID", "id must be a UUID", nil)
		return
	}

	if err := c.questionnaires.Delete(r.Context(), id); err != nil {
		if errors.Is(err, questionnaire.ErrNotFound) {
			_ = httpapi.WriteError(w, http.StatusNotFound, "QUESTIONNAIRE_NOT_FOUND", err.Error(), nil)
			return
		}
		logError(r, err)
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete questionnaire", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toQuestionnaireResponse(q questionnaire.Questionnaire) questionnaireResponse {
	resp := questionnaireResponse{
		ID:           q.ID().String(),
		Name:         q.Name(),
		Description:  q.Description(),
		Guidelines:   q.Guidelines(),
		Sections:     make([]sectionResponse, 0, len(q.Sections())),
		RatingScales: make([]ratingScaleResponse, 0, len(q.RatingScales())),
		CreatedAt:    q.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt:    q.UpdatedAt().UTC().Format(time.RFC3339),
	}
	for _, s := range q.Sections() {
		section := sectionResponse{
			ID:         s.ID.String(),
			Title:      s.Title,
			OrderIndex: s.OrderIndex,
			Steps:      make([]stepResponse, 0, len(s.Steps)),
		}
		for _, st := range s.Steps {
			step := stepResponse{
				ID:         st.ID.String(),
				Title:      st.Title,
				OrderIndex: st.OrderIndex,
				Questions:  make([]questionResponse, 0, len(st.Questions)),
			}
			for _, qu := range st.Questions {
				question := questionResponse{
					ID:         qu.ID.String(),
					Title:      qu.Title,
					Text:       qu.Text,
					Context:    qu.Context,
					OrderIndex: qu.OrderIndex,
					Ratings:    make([]questionRatingResponse, 0, len(qu.Ratings)),
				}
				for _, rt := range qu.Ratings {
					question.Ratings = append(question.Ratings, questionRatingResponse{
						ScaleID:     rt.ScaleID.String(),
						Value:       rt.Value,
						Description: rt.Description,
					})
				}
				step.Questions = append(step.Questions, question)
			}
			section.Steps = append(section.Steps, step)
		}
		resp.Sections = append(resp.Sections, section)
	}
	for _, sc := range q.RatingScales() {
		resp.RatingScales = append(resp.RatingScales, ratingScaleResponse{
			ID:          sc.ID.String(),
			Value:       sc.Value,
			Name:        sc.Name,
			Description: sc.Description,
			OrderIndex:  sc.OrderIndex,
		})
	}
	return resp
}

func logError(r *http.Request, err error) {
	composables.UseLogger(r.Context()).WithError(err).Error("assessment API request failed")
}
