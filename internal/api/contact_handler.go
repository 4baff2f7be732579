package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/database"
	"ongelEstate/internal/mailer"
)

// ContactHandler accepts the public contact form: it stores a lead and
// notifies the office mailbox.
type ContactHandler struct {
	db     *gorm.DB
	sender mailer.Sender
}

func NewContactHandler(db *gorm.DB, sender mailer.Sender) *ContactHandler {
	return &ContactHandler{db: db, sender: sender}
}

type contactFormRequest struct {
	FullName string `json:"fullName" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Message  string `json:"message" binding:"required,min=10"`
	// Website is a honeypot: humans never see the field, bots fill it.
	Website string `json:"website"`
}

// Submit handles a contact-form post. Submissions with the honeypot filled
// are silently accepted and dropped.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if req.Website != "" {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	firstName, lastName := splitFullName(req.FullName)
	lead := database.Lead{
		FirstName: firstName,
		LastName:  lastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Source:    database.LeadSourceContactForm,
		Status:    database.LeadNew,
		Message:   req.Message,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&lead).Error; err != nil {
		middleware.LoggerFromContext(c).Error("store contact lead failed", slog.Any("error", err))
		Internal(c, "failed to submit message")
		return
	}

	msg := mailer.ContactMessage{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Message:  req.Message,
	}
	switch err := h.sender.SendContactEmail(msg); {
	case err == nil:
	case errors.Is(err, mailer.ErrNotConfigured):
		// Mail disabled (dev/test); the lead is stored either way.
		middleware.LoggerFromContext(c).Warn("contact email skipped, smtp not configured")
	default:
		middleware.LoggerFromContext(c).Error("send contact email failed", slog.Any("error", err))
		BadRequest(c, "message could not be sent, please try again later")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func splitFullName(full string) (first, last string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
	}
}
