package v1

import (
	"errors"
	"net/http"

	"obsidiana-backend/internal/delivery/http/response"
	"obsidiana-backend/internal/domain"
	"obsidiana-backend/internal/usecase"
	"obsidiana-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentUC domain.ContentUsecase
}

func NewContentHandler(public *gin.RouterGroup, contentUC domain.ContentUsecase) {
	handler := &ContentHandler{contentUC: contentUC}
	public.GET("/content/:collection", handler.ListEntries)
}

// ListEntries godoc
// @Summary      List indexed content
// @Description  Returns the frontmatter of a collection, newest first.
// @Tags         content
// @Produce      json
// @Param        collection  path      string  true   "Collection"  Enums(blogEn, blogEs, projectsEn, projectsEs)
// @Param        lang        query     string  false  "Language"    Enums(en, es)
// @Success      200         {object}  response.Response{data=[]domain.ContentEntry}
// @Failure      400         {object}  response.Response
// @Failure      404         {object}  response.Response
// @Failure      503         {object}  response.Response
// @Router       /content/{collection} [get]
func (h *ContentHandler) ListEntries(c *gin.Context) {
	entries, err := h.contentUC.List(c.Request.Context(), c.Param("collection"), c.Query("lang"))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUnknownCollection):
			c.Error(apperror.NotFound("Unknown collection"))
		case errors.Is(err, usecase.ErrUnsupportedLang):
			c.Error(apperror.BadRequest("lang must be one of: en, es"))
		case errors.Is(err, usecase.ErrIndexDisabled):
			c.Error(apperror.ServiceUnavailable("Content index is not available", err))
		default:
			c.Error(apperror.Internal(err))
		}
		return
	}
	response.Success(c, http.StatusOK, "Content retrieved", entries)
}
