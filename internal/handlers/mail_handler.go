package handlers

import (
	"storefront/internal/apperror"
	"storefront/internal/mail"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type sendMailRequest struct {
	To      string `json:"to" form:"to" validate:"required,email"`
	Subject string `json:"subject" form:"subject" validate:"required"`
	Text    string `json:"text" form:"text" validate:"required"`
}

// MailHandler sends email on behalf of authenticated clients.
type MailHandler struct {
	sender   mail.Sender
	validate *validator.Validate
}

// NewMailHandler creates a new MailHandler.
func NewMailHandler(sender mail.Sender) *MailHandler {
	return &MailHandler{
		sender:   sender,
		validate: newValidator(),
	}
}

func (h *MailHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Post("/mail/send", requireAuth, h.HandleSend)
}

// HandleSend delivers one email.
func (h *MailHandler) HandleSend(c *fiber.Ctx) error {
	var req sendMailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := validateStruct(h.validate, req, "To, subject, and text are required"); err != nil {
		return err
	}

	if err := h.sender.Send(c.UserContext(), req.To, req.Subject, req.Text); err != nil {
		return apperror.NewInternal("Mail could not be sent", err)
	}
	return c.JSON(fiber.Map{
		"message": "Mail sent successfully",
	})
}
