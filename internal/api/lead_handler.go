package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/database"
	"ongelEstate/internal/query"
)

// LeadHandler serves the inbound-inquiry resource and its follow-up notes.
type LeadHandler struct {
	db *gorm.DB
}

func NewLeadHandler(db *gorm.DB) *LeadHandler {
	return &LeadHandler{db: db}
}

const defaultLeadPageSize = 12

var leadSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"status":    "status",
	"source":    "source",
}

type leadFilter struct {
	pageParams
	Status database.LeadStatus `form:"status"`
	Source database.LeadSource `form:"source"`
	Search string              `form:"search"`
}

// FindAll lists leads, agents seeing only their own assignments.
func (h *LeadHandler) FindAll(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var f leadFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		BadRequest(c, err.Error())
		return
	}

	tx := h.db.WithContext(c.Request.Context()).
		Model(&database.Lead{}).
		Preload("AssignedAgent")
	tx = query.ForAgent(tx, user.Role, user.ID)
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	if f.Source != "" {
		tx = tx.Where("source = ?", f.Source)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		tx = tx.Where(
			"LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR phone LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	page, limit := query.ClampPage(f.Page, f.Limit, defaultLeadPageSize)
	order := query.ResolveSort(f.SortBy, f.SortOrder, "createdAt", leadSortColumns)

	result, err := query.Run[database.Lead](tx, order, page, limit)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list leads failed", slog.Any("error", err))
		Internal(c, "failed to list leads")
		return
	}

	c.JSON(http.StatusOK, result)
}

type createLeadRequest struct {
	FirstName        string              `json:"firstName" binding:"required"`
	LastName         string              `json:"lastName" binding:"required"`
	Email            string              `json:"email" binding:"required,email"`
	Phone            string              `json:"phone"`
	Source           database.LeadSource `json:"source" binding:"required"`
	Message          string              `json:"message"`
	RelatedListingID *uuid.UUID          `json:"relatedListingId"`
	AssignedAgentID  *uuid.UUID          `json:"assignedAgentId"`
}

// Create inserts a lead. Agents always become the assignee of leads they create.
func (h *LeadHandler) Create(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req createLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	assignee := req.AssignedAgentID
	if user.Role == database.RoleAgent {
		id := user.ID
		assignee = &id
	}

	lead := database.Lead{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Source:           req.Source,
		Status:           database.LeadNew,
		Message:          req.Message,
		RelatedListingID: req.RelatedListingID,
		AssignedAgentID:  assignee,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&lead).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create lead failed", slog.Any("error", err))
		Internal(c, "failed to create lead")
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// FindOne returns one lead with its notes; 404 when absent, 403 when
// assigned to another agent.
func (h *LeadHandler) FindOne(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	lead, err := h.getLeadForUser(c.Request.Context(), c.Param("id"), user, true)
	if err != nil {
		h.respondLeadError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

type updateLeadRequest struct {
	FirstName        *string              `json:"firstName"`
	LastName         *string              `json:"lastName"`
	Email            *string              `json:"email" binding:"omitempty,email"`
	Phone            *string              `json:"phone"`
	Status           *database.LeadStatus `json:"status"`
	Message          *string              `json:"message"`
	RelatedListingID *uuid.UUID           `json:"relatedListingId"`
	AssignedAgentID  *uuid.UUID           `json:"assignedAgentId"`
}

// Update patches a lead. Only admins may reassign.
func (h *LeadHandler) Update(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req updateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	lead, err := h.getLeadForUser(c.Request.Context(), c.Param("id"), user, false)
	if err != nil {
		h.respondLeadError(c, err)
		return
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Message != nil {
		updates["message"] = *req.Message
	}
	if req.RelatedListingID != nil {
		updates["related_listing_id"] = *req.RelatedListingID
	}
	if req.AssignedAgentID != nil && user.Role == database.RoleAdmin {
		updates["assigned_agent_id"] = *req.AssignedAgentID
	}

	ctx := c.Request.Context()
	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(lead).Updates(updates).Error; err != nil {
			middleware.LoggerFromContext(c).Error("update lead failed", slog.Any("error", err))
			Internal(c, "failed to update lead")
			return
		}
	}

	if err := h.db.WithContext(ctx).Preload("Notes").First(lead, "id = ?", lead.ID).Error; err != nil {
		Internal(c, "failed to reload lead")
		return
	}

	c.JSON(http.StatusOK, lead)
}

// Delete removes a lead and its notes.
func (h *LeadHandler) Delete(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	lead, err := h.getLeadForUser(c.Request.Context(), c.Param("id"), user, false)
	if err != nil {
		h.respondLeadError(c, err)
		return
	}

	ctx := c.Request.Context()
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lead_id = ?", lead.ID).Delete(&database.LeadNote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Lead{}, "id = ?", lead.ID).Error
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("delete lead failed", slog.Any("error", err))
		Internal(c, "failed to delete lead")
		return
	}

	c.Status(http.StatusNoContent)
}

type addLeadNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddNote appends a follow-up note to a lead.
func (h *LeadHandler) AddNote(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req addLeadNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	lead, err := h.getLeadForUser(c.Request.Context(), c.Param("id"), user, false)
	if err != nil {
		h.respondLeadError(c, err)
		return
	}

	note := database.LeadNote{
		Content:     req.Content,
		LeadID:      lead.ID,
		CreatedByID: user.ID,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&note).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create lead note failed", slog.Any("error", err))
		Internal(c, "failed to add note")
		return
	}

	c.JSON(http.StatusCreated, note)
}

// DeleteNote removes one follow-up note: 404 when the note is absent, then
// the usual ownership check on its lead.
func (h *LeadHandler) DeleteNote(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	noteID, err := parseUUIDParam(c, "noteId")
	if err != nil {
		BadRequest(c, "invalid note id")
		return
	}

	ctx := c.Request.Context()

	var note database.LeadNote
	if err := h.db.WithContext(ctx).First(&note, "id = ?", noteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "note not found")
			return
		}
		Internal(c, "failed to query note")
		return
	}

	if _, err := h.getLeadForUser(ctx, note.LeadID.String(), user, false); err != nil {
		h.respondLeadError(c, err)
		return
	}

	if err := h.db.WithContext(ctx).Delete(&database.LeadNote{}, "id = ?", note.ID).Error; err != nil {
		middleware.LoggerFromContext(c).Error("delete lead note failed", slog.Any("error", err))
		Internal(c, "failed to delete note")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LeadHandler) getLeadForUser(ctx context.Context, idParam string, user actingUser, withNotes bool) (*database.Lead, error) {
	id, err := uuid.Parse(idParam)
	if err != nil {
		return nil, errInvalidID
	}

	tx := h.db.WithContext(ctx).Preload("AssignedAgent")
	if withNotes {
		tx = tx.Preload("Notes", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).Preload("Notes.CreatedBy")
	}

	var lead database.Lead
	if err := tx.First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if !query.OwnedBy(user.Role, lead.AssignedAgentID, user.ID) {
		return nil, errForbidden
	}

	return &lead, nil
}

func (h *LeadHandler) respondLeadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidID):
		BadRequest(c, "invalid lead id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "lead not found")
	case errors.Is(err, errForbidden):
		Forbidden(c, "you do not have permission to access this lead")
	default:
		Internal(c, "failed to query lead")
	}
}
