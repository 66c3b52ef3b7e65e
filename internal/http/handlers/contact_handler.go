// Contact verification HTTP handlers.
//
// This file exposes the two-phase contact submission flow:
//   - POST /contacts               (submit, triggers a verification email)
//   - POST /contacts/verify-email  (present the emailed code, commit the contact)
//
// Handlers are transport-thin: they validate input, call the application
// service, and translate results into HTTP responses. Every unsuccessful
// verification attempt returns the same body so the endpoint cannot be used
// to probe which addresses have codes pending.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/go-catalog-backend/internal/domain"
	"github.com/go-catalog-backend/internal/http/middleware"
	"github.com/go-catalog-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// ContactService defines the verification flow operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ContactService interface {
	// RequestVerification stores a pending submission and emails a code.
	RequestVerification(ctx context.Context, username, email, comment string) error
	// ConfirmVerification checks the code and commits a durable Contact.
	ConfirmVerification(ctx context.Context, email, code string) (*domain.Contact, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for the catalog and the contact
// verification flow. It depends on abstract service interfaces to keep
// transport concerns separate from business logic.
type Handlers struct {
	catalogSvc CatalogService
	contactSvc ContactService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(catalogSvc CatalogService, contactSvc ContactService) *Handlers {
	return &Handlers{catalogSvc: catalogSvc, contactSvc: contactSvc}
}

//
// DTOs
//

// CreateContactRequest is the JSON payload for submitting a contact form.
// The email field is named "gmail" for compatibility with the historical API;
// it accepts any email address.
type CreateContactRequest struct {
	Username string `json:"username" binding:"required,min=1,max=150" example:"ann"`
	Gmail    string `json:"gmail"    binding:"required,email"         example:"ann@example.com"`
	Comment  string `json:"comment"  binding:"required,min=1"         example:"Do you ship to Norway?"`
}

// VerifyEmailRequest is the JSON payload for presenting a verification code.
type VerifyEmailRequest struct {
	Gmail            string `json:"gmail"             binding:"required,email"           example:"ann@example.com"`
	VerificationCode string `json:"verification_code" binding:"required,len=6,numeric"   example:"384912"`
}

// MessageResponse is a minimal success envelope for operations that do not
// return a resource.
type MessageResponse struct {
	Message string `json:"message" example:"Verification email sent. Please verify to complete."`
}

// verificationFailedBody is the exact legacy failure body for verify-email.
// All failure modes share it; see ContactService.ConfirmVerification.
var verificationFailedBody = gin.H{"error": "Invalid or expired verification code."}

// fieldErrors flattens validator.ValidationErrors into a field -> problem map
// for 400 responses. Non-validator errors yield a generic body entry.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = "invalid JSON body"
		return out
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "is required"
		case "email":
			out[fe.Field()] = "must be a valid email address"
		case "len":
			out[fe.Field()] = "must be exactly " + fe.Param() + " characters"
		case "numeric":
			out[fe.Field()] = "must contain only digits"
		case "min":
			out[fe.Field()] = "must be at least " + fe.Param() + " characters"
		case "max":
			out[fe.Field()] = "must be at most " + fe.Param() + " characters"
		default:
			out[fe.Field()] = "is invalid"
		}
	}
	return out
}

//
// Handlers
//

// CreateContact godoc
// @ID          createContact
// @Summary     Submit the contact form
// @Description Stores the submission as pending and emails a 6-digit verification code to the given address. The contact becomes durable only after verification.
// @Tags        Contacts
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateContactRequest  true  "Contact submission"
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failure (per-field details)"
// @Failure     429  {object} handlers.ErrorResponse "Rate limited"
// @Failure     502  {object} handlers.ErrorResponse "Verification email could not be sent"
// @Router      /contacts [post]
func (h *Handlers) CreateContact(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       ErrCodeBadRequest,
			"message":    "validation failed",
			"errors":     fieldErrors(err),
		})
		return
	}

	err := h.contactSvc.RequestVerification(c.Request.Context(), req.Username, req.Gmail, req.Comment)
	switch {
	case err == nil:
		ok(c, http.StatusOK, MessageResponse{Message: "Verification email sent. Please verify to complete."})
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrDeliveryFailed):
		// The pending entry is stored; the client may simply resubmit.
		fail(c, http.StatusBadGateway, ErrCodeDeliveryFailed, "could not send verification email, please try again")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// VerifyEmail godoc
// @ID          verifyEmail
// @Summary     Verify a contact submission
// @Description Checks the emailed code for the given address. On success the contact is persisted and returned. All failure modes (unknown address, expired or wrong code, lost race) share one 400 body.
// @Tags        Contacts
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.VerifyEmailRequest  true  "Verification payload"
//
// @Success     201  {object} domain.Contact
// @Failure     400  {object} map[string]string "Invalid or expired verification code"
// @Failure     429  {object} handlers.ErrorResponse "Rate limited"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /contacts/verify-email [post]
func (h *Handlers) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed payloads get the same terse body as failed checks, so the
		// response reveals nothing about pending state.
		c.AbortWithStatusJSON(http.StatusBadRequest, verificationFailedBody)
		return
	}

	contact, err := h.contactSvc.ConfirmVerification(c.Request.Context(), req.Gmail, req.VerificationCode)
	switch {
	case err == nil:
		ok(c, http.StatusCreated, contact)
	case errors.Is(err, services.ErrVerificationFailed), errors.Is(err, services.ErrInvalidInput):
		// The precise cause stays in server logs only.
		middleware.LoggerFrom(c).Debug().Err(err).Msg("verification rejected")
		c.AbortWithStatusJSON(http.StatusBadRequest, verificationFailedBody)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
