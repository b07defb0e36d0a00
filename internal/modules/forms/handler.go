package forms

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"volunteerhub/internal/middleware"
	"volunteerhub/internal/pkg/response"
)

// uploadField is the multipart field name the intake reads files from.
const uploadField = "files"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/forms")
	{
		g.POST("/uploads", h.Upload)
		g.GET("/uploads", h.List)
	}
}

// Upload godoc
// @Summary Upload a batch of scanned volunteer forms
// @Description Accepts PDF/JPEG/PNG files under the "files" multipart field. The whole batch is validated before anything is stored; on success each file gets an id and starts extraction in the background.
// @Tags Forms
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Files to upload (repeatable)"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,413 {object} map[string]interface{}
// @Router /forms/uploads [post]
func (h *Handler) Upload(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Expected multipart form data")
		return
	}
	headers := form.File[uploadField]

	files, err := h.service.Upload(c.Request.Context(), principal, headers)
	if err != nil {
		h.writeUploadError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, toFileResponses(files, principal.IsPrivileged()))
}

// List godoc
// @Summary List uploaded forms and their extraction status
// @Description Newest-first. Non-admin callers see only their own uploads; admins see all uploads with the uploader's name.
// @Tags Forms
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (1-200, default 50)"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401 {object} map[string]interface{}
// @Router /forms/uploads [get]
func (h *Handler) List(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", bindingDetails(err))
		return
	}

	files, err := h.service.List(c.Request.Context(), principal, q.Limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list uploads")
		return
	}

	response.Success(c, http.StatusOK, toFileResponses(files, principal.IsPrivileged()))
}

func (h *Handler) writeUploadError(c *gin.Context, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		details := gin.H{"file": verr.FileName}
		if errors.Is(err, ErrFileTooLarge) {
			response.ErrorWithDetails(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", verr.Error(), details)
			return
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), details)
		return
	}
	if errors.Is(err, ErrNoFiles) {
		response.Error(c, http.StatusBadRequest, "NO_FILES", "No files provided")
		return
	}
	response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Upload failed")
}

func bindingDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
