package v1

import (
	"errors"
	"io"
	"net/http"
	"time"

	"obsidiana-backend/internal/contact"
	"obsidiana-backend/internal/delivery/http/response"
	"obsidiana-backend/internal/domain"
	"obsidiana-backend/internal/usecase"
	"obsidiana-backend/pkg/apperror"
	"obsidiana-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// moodKeepAlive is how often an idle mood stream sends a ping.
const moodKeepAlive = 25 * time.Second

type ContactHandler struct {
	contactUC domain.ContactUsecase
}

// FormErrorDetails is the error payload of rejected or failed submissions.
type FormErrorDetails struct {
	Fields        map[contact.Field]*contact.ValidationError `json:"fields,omitempty"`
	FallbackEmail string                                     `json:"fallback_email,omitempty"`
	Form          *contact.Snapshot                          `json:"form,omitempty"`
}

// NewContactHandler registers the contact routes (public, no auth required).
// limit guards the routes that reach the relay.
func NewContactHandler(public *gin.RouterGroup, contactUC domain.ContactUsecase, limit gin.HandlerFunc) {
	handler := &ContactHandler{
		contactUC: contactUC,
	}

	public.POST("/contact", limit, handler.SubmitContact)

	forms := public.Group("/contact/forms")
	{
		forms.POST("", handler.OpenForm)
		forms.GET("/:id", handler.GetForm)
		forms.PUT("/:id/fields/:field", handler.UpdateField)
		forms.POST("/:id/submit", limit, handler.SubmitForm)
		forms.POST("/:id/reset", handler.ResetForm)
		forms.GET("/:id/mood", handler.StreamMood)
	}
}

// SubmitContact godoc
// @Summary      Submit Contact Form
// @Description  Validates the four fields and relays the message in one call. This is a public endpoint.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        contact  body      domain.ContactRequest  true  "Contact Form Data"
// @Success      200      {object}  response.Response{data=contact.Snapshot}
// @Failure      400      {object}  response.Response{error=FormErrorDetails}
// @Failure      429      {object}  response.Response
// @Failure      502      {object}  response.Response{error=FormErrorDetails}
// @Failure      503      {object}  response.Response
// @Router       /contact [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req domain.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body").WithDetails(validation.FormatValidationErrors(err)))
		return
	}

	snap, err := h.contactUC.Submit(c.Request.Context(), &req, requestMeta(c))
	if err != nil {
		c.Error(h.formError(err, &snap))
		return
	}

	response.Success(c, http.StatusOK, "Your message has been sent successfully!", snap)
}

// OpenForm godoc
// @Summary      Open a contact form session
// @Tags         contact
// @Produce      json
// @Success      201  {object}  response.Response{data=contact.Snapshot}
// @Router       /contact/forms [post]
func (h *ContactHandler) OpenForm(c *gin.Context) {
	snap, err := h.contactUC.OpenForm(c.Request.Context())
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	response.Success(c, http.StatusCreated, "Form opened", snap)
}

// GetForm godoc
// @Summary      Get a contact form snapshot
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=contact.Snapshot}
// @Failure      404  {object}  response.Response
// @Router       /contact/forms/{id} [get]
func (h *ContactHandler) GetForm(c *gin.Context) {
	snap, err := h.contactUC.GetForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(h.formError(err, nil))
		return
	}
	response.Success(c, http.StatusOK, "Form retrieved", snap)
}

// UpdateField godoc
// @Summary      Set a contact form field
// @Description  Stores the raw value and validates it eagerly. A failing rule is reported in data.error with status 200.
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        id     path      string                     true  "Form ID"
// @Param        field  path      string                     true  "Field name"  Enums(name, email, subject, message)
// @Param        value  body      domain.FieldUpdateRequest  true  "Field value"
// @Success      200    {object}  response.Response{data=domain.FieldUpdateResult}
// @Failure      400    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /contact/forms/{id}/fields/{field} [put]
func (h *ContactHandler) UpdateField(c *gin.Context) {
	var req domain.FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body").WithDetails(validation.FormatValidationErrors(err)))
		return
	}

	res, err := h.contactUC.UpdateField(c.Request.Context(), c.Param("id"), c.Param("field"), req.Value)
	if err != nil {
		c.Error(h.formError(err, nil))
		return
	}
	response.Success(c, http.StatusOK, "Field updated", res)
}

// SubmitForm godoc
// @Summary      Submit a contact form session
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=contact.Snapshot}
// @Failure      400  {object}  response.Response{error=FormErrorDetails}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Failure      502  {object}  response.Response{error=FormErrorDetails}
// @Failure      503  {object}  response.Response
// @Router       /contact/forms/{id}/submit [post]
func (h *ContactHandler) SubmitForm(c *gin.Context) {
	snap, err := h.contactUC.SubmitForm(c.Request.Context(), c.Param("id"), requestMeta(c))
	if err != nil {
		c.Error(h.formError(err, &snap))
		return
	}
	response.Success(c, http.StatusOK, "Your message has been sent successfully!", snap)
}

// ResetForm godoc
// @Summary      Reset a contact form session
// @Description  Allowed after a submission succeeded or failed.
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  response.Response{data=contact.Snapshot}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /contact/forms/{id}/reset [post]
func (h *ContactHandler) ResetForm(c *gin.Context) {
	snap, err := h.contactUC.ResetForm(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(h.formError(err, nil))
		return
	}
	response.Success(c, http.StatusOK, "Form reset", snap)
}

// StreamMood godoc
// @Summary      Stream mascot mood changes
// @Description  Server-sent events. Each "mood" event carries the form id and the new mood, starting with the current one.
// @Tags         contact
// @Produce      text/event-stream
// @Param        id   path  string  true  "Form ID"
// @Success      200  {string}  string  "event stream"
// @Failure      404  {object}  response.Response
// @Router       /contact/forms/{id}/mood [get]
func (h *ContactHandler) StreamMood(c *gin.Context) {
	id := c.Param("id")
	moods, err := h.contactUC.WatchMood(c.Request.Context(), id)
	if err != nil {
		c.Error(h.formError(err, nil))
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(moodKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case m, ok := <-moods:
			if !ok {
				return false
			}
			c.SSEvent("mood", gin.H{"form_id": id, "mood": m})
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}

// formError maps contact errors to API errors. snap, when given, is echoed
// back so the client can render field errors and the failure message.
func (h *ContactHandler) formError(err error, snap *contact.Snapshot) error {
	if snap != nil && snap.ID == "" {
		snap = nil
	}

	var verrs contact.ValidationErrors
	var subErr *contact.SubmissionError
	switch {
	case errors.As(err, &verrs):
		return apperror.BadRequest("Please correct the highlighted fields").
			WithDetails(FormErrorDetails{Fields: verrs.ByField(), Form: snap})
	case errors.As(err, &subErr):
		return apperror.BadGateway(subErr.Message, err).
			WithDetails(FormErrorDetails{FallbackEmail: h.contactUC.FallbackEmail(), Form: snap})
	case errors.Is(err, usecase.ErrFormNotFound):
		return apperror.NotFound("Contact form not found or expired")
	case errors.Is(err, contact.ErrUnknownField):
		return apperror.BadRequest("Unknown field")
	case errors.Is(err, contact.ErrSubmissionInFlight):
		return apperror.Conflict("A submission is already in progress")
	case errors.Is(err, contact.ErrInvalidTransition):
		return apperror.Conflict("Operation not allowed in the current form state")
	case errors.Is(err, contact.ErrRelayNotConfigured):
		return apperror.ServiceUnavailable("Contact service temporarily unavailable", err).
			WithDetails(FormErrorDetails{FallbackEmail: h.contactUC.FallbackEmail()})
	}
	return apperror.Internal(err)
}

func requestMeta(c *gin.Context) domain.RequestMeta {
	return domain.RequestMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
		RequestID: c.GetString(string(domain.KeyRequestID)),
	}
}
