package v1

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"obsidiana-backend/internal/delivery/http/response"
	"obsidiana-backend/internal/domain"
	"obsidiana-backend/internal/usecase"
	"obsidiana-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Reindexer rebuilds the content index from the markdown tree.
type Reindexer interface {
	Reindex(ctx context.Context) (*usecase.IndexResult, error)
}

type AdminHandler struct {
	contactUC domain.ContactUsecase
	indexer   Reindexer
}

// NewAdminHandler registers the admin routes on a group that already runs
// the admin auth middleware. indexer may be nil.
func NewAdminHandler(admin *gin.RouterGroup, contactUC domain.ContactUsecase, indexer Reindexer) {
	handler := &AdminHandler{contactUC: contactUC, indexer: indexer}

	admin.GET("/contact/submissions", handler.ListSubmissions)
	admin.GET("/contact/submissions/export", handler.ExportSubmissions)
	admin.POST("/content/sync", handler.SyncContent)
}

// ListSubmissions godoc
// @Summary      List contact submissions
// @Description  Returns the submission audit log, newest first. Sender emails are masked.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int  false  "Page number"
// @Param        pageSize  query     int  false  "Items per page (max 100)"
// @Success      200       {object}  response.Response{data=domain.SubmissionPage}
// @Failure      401       {object}  response.Response
// @Failure      503       {object}  response.Response
// @Router       /admin/contact/submissions [get]
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	result, err := h.contactUC.ListSubmissions(c.Request.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		if errors.Is(err, usecase.ErrAuditDisabled) {
			c.Error(apperror.ServiceUnavailable("Submission log is not available", err))
			return
		}
		c.Error(apperror.Internal(err))
		return
	}
	response.Success(c, http.StatusOK, "Submissions retrieved", result)
}

// ExportSubmissions godoc
// @Summary      Export contact submissions
// @Description  Downloads the submission audit log as an Excel or CSV file.
// @Tags         admin
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        format  query     string  false  "Export format (xlsx, csv). Default: xlsx"
// @Success      200     {file}    binary
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      503     {object}  response.Response
// @Router       /admin/contact/submissions/export [get]
func (h *AdminHandler) ExportSubmissions(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")

	data, filename, err := h.contactUC.ExportSubmissions(c.Request.Context(), format)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrUnsupportedFormat):
		c.Error(apperror.BadRequest("Unsupported export format. Use xlsx or csv"))
		return
	case errors.Is(err, usecase.ErrAuditDisabled):
		c.Error(apperror.ServiceUnavailable("Submission log is not available", err))
		return
	default:
		c.Error(apperror.Internal(err))
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// SyncContent godoc
// @Summary      Rebuild the content index
// @Description  Validates every collection and upserts the entries. Nothing is written when a file is invalid.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=usecase.IndexResult}
// @Failure      401  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /admin/content/sync [post]
func (h *AdminHandler) SyncContent(c *gin.Context) {
	if h.indexer == nil {
		c.Error(apperror.ServiceUnavailable("Content index is not available", nil))
		return
	}

	res, err := h.indexer.Reindex(c.Request.Context())
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, "Content index synced", res)
	case errors.Is(err, usecase.ErrContentInvalid):
		c.Error(apperror.New(http.StatusUnprocessableEntity, "Content has validation errors", err).WithDetails(res.Report))
	case errors.Is(err, usecase.ErrIndexDisabled):
		c.Error(apperror.ServiceUnavailable("Content index is not available", err))
	default:
		c.Error(apperror.Internal(err))
	}
}
