package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/reservation_insight/backend/internal/db"
	"github.com/reservation_insight/backend/internal/errs"
	"github.com/reservation_insight/backend/internal/http/middleware"
	"github.com/reservation_insight/backend/internal/models"
	"github.com/reservation_insight/backend/internal/presenter"
	"github.com/reservation_insight/backend/internal/prompt"
	"github.com/reservation_insight/backend/internal/service"
	"github.com/reservation_insight/backend/internal/session"
)

// RunStore is the read side of run history. It is nil when no database is
// configured.
type RunStore interface {
	Ping(ctx context.Context) error
	GetLatestRun(ctx context.Context) (models.Run, error)
}

type Handler struct {
	Pipeline  *service.Pipeline
	Store     RunStore
	Validator *validator.Validate
	Logger    zerolog.Logger
}

type UploadRequest struct {
	Instruction string `form:"instruction" validate:"max=20000"`
}

type PromptResponse struct {
	Instruction     string         `json:"instruction"`
	Schema          []prompt.Field `json:"schema"`
	SchemaDoc       string         `json:"schema_doc"`
	Separator       string         `json:"separator"`
	Template        string         `json:"template"`
	Model           string         `json:"model"`
	MaxOutputTokens int            `json:"max_output_tokens"`
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if h.Store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
}

func (h *Handler) Page(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	c.HTML(http.StatusOK, presenter.PageTemplate, presenter.NewView(sess.Snapshot()))
}

// UploadForm starts an upload from the HTML form and always lands back on
// the page, which shows progress or the error.
func (h *Handler) UploadForm(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if _, err := h.submit(c, sess); err != nil {
		h.Logger.Info().Err(err).Str("session_id", sess.ID).Msg("upload rejected")
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// @Summary Upload an event export
// @Description Starts analysis of one CSV export for the caller's session. With wait=1 the call blocks until the insight or an error is available.
// @Tags upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "events.csv"
// @Param instruction formData string false "instruction override"
// @Param wait query string false "block until finished (1/true)"
// @Success 200 {object} session.State
// @Success 202 {object} session.State
// @Failure 400 {object} map[string]any
// @Failure 422 {object} map[string]any
// @Router /api/upload [post]
func (h *Handler) UploadAPI(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	done, err := h.submit(c, sess)
	if err != nil {
		writeKindError(c, err, nil)
		return
	}

	wait := c.Query("wait")
	if wait != "1" && !strings.EqualFold(wait, "true") {
		c.JSON(http.StatusAccepted, sess.Snapshot())
		return
	}
	select {
	case <-done:
	case <-c.Request.Context().Done():
		return
	}
	st := sess.Snapshot()
	if st.Error != nil {
		writeError(c, http.StatusUnprocessableEntity, string(st.Error.Kind), st.Error.Message, st)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary Current session state
// @Tags session
// @Produce json
// @Success 200 {object} session.State
// @Router /api/session [get]
func (h *Handler) SessionState(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentSession(c).Snapshot())
}

// @Summary Prompt template
// @Description Default instruction, schema documentation and the separator placed before the file text.
// @Tags prompt
// @Produce json
// @Success 200 {object} PromptResponse
// @Router /api/prompt [get]
func (h *Handler) Prompt(c *gin.Context) {
	composer := h.Pipeline.Composer
	instruction := composer.Instruction
	if strings.TrimSpace(instruction) == "" {
		instruction = prompt.DefaultInstruction
	}
	c.JSON(http.StatusOK, PromptResponse{
		Instruction:     instruction,
		Schema:          prompt.SchemaFields(),
		SchemaDoc:       prompt.SchemaDoc(),
		Separator:       prompt.Separator,
		Template:        composer.Template(),
		Model:           composer.Model,
		MaxOutputTokens: composer.MaxOutputTokens,
	})
}

// @Summary Latest run
// @Tags runs
// @Produce json
// @Success 200 {object} models.Run
// @Failure 404 {object} map[string]any
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	if h.Store == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Run history is disabled", nil)
		return
	}
	result, err := h.Store.GetLatestRun(c.Request.Context())
	if err != nil {
		if db.IsNotFound(err) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load run", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// submit validates the multipart request and hands the file to the pipeline.
// Rejections before the pipeline starts are recorded on the session.
func (h *Handler) submit(c *gin.Context, sess *session.Session) (<-chan struct{}, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		e := errs.New(errs.KindNoFileSelected, "Please choose a file.")
		sess.Reject(e)
		return nil, e
	}
	if !validateExt(fh.Filename) {
		e := errs.New(errs.KindFileReadFailed, "File must be a .csv export.")
		sess.Reject(e)
		return nil, e
	}

	var req UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.Logger.Debug().Err(err).Str("session_id", sess.ID).Msg("upload form did not bind")
		e := errs.New(errs.KindInvalidRequest, "Invalid upload form.")
		sess.Reject(e)
		return nil, e
	}
	if err := h.Validator.Struct(req); err != nil {
		h.Logger.Debug().Err(err).Str("session_id", sess.ID).Msg("upload form failed validation")
		e := errs.New(errs.KindInvalidRequest, "Instruction is too long.")
		sess.Reject(e)
		return nil, e
	}

	return h.Pipeline.Submit(sess, fileSource(fh), req.Instruction)
}

func fileSource(fh *multipart.FileHeader) service.Source {
	return service.Source{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func writeKindError(c *gin.Context, err error, details any) {
	var e *errs.Error
	if !errors.As(err, &e) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", err.Error())
		return
	}
	status := http.StatusUnprocessableEntity
	if e.Kind == errs.KindNoFileSelected || e.Kind == errs.KindInvalidRequest || (e.Kind == errs.KindFileReadFailed && e.Err == nil) {
		status = http.StatusBadRequest
	}
	writeError(c, status, string(e.Kind), e.Error(), details)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func validateExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv"
}
