package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/database"
)

// FooterHandler manages the footer link lists (social icons, listing portals).
type FooterHandler struct {
	db *gorm.DB
}

func NewFooterHandler(db *gorm.DB) *FooterHandler {
	return &FooterHandler{db: db}
}

// FindPublic returns the active footer links grouped by type, ordered.
func (h *FooterHandler) FindPublic(c *gin.Context) {
	var links []database.FooterLink
	err := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("position ASC").
		Find(&links).Error
	if err != nil {
		middleware.LoggerFromContext(c).Error("list footer links failed", slog.Any("error", err))
		Internal(c, "failed to list footer links")
		return
	}

	social := make([]database.FooterLink, 0)
	portal := make([]database.FooterLink, 0)
	for _, link := range links {
		switch link.Type {
		case database.FooterLinkSocial:
			social = append(social, link)
		case database.FooterLinkPortal:
			portal = append(portal, link)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"social": social,
		"portal": portal,
	})
}

// FindAll returns every footer link flat, including inactive ones.
func (h *FooterHandler) FindAll(c *gin.Context) {
	var links []database.FooterLink
	err := h.db.WithContext(c.Request.Context()).
		Order("type ASC, position ASC").
		Find(&links).Error
	if err != nil {
		middleware.LoggerFromContext(c).Error("list footer links failed", slog.Any("error", err))
		Internal(c, "failed to list footer links")
		return
	}

	c.JSON(http.StatusOK, links)
}

type createFooterLinkRequest struct {
	Type     database.FooterLinkType `json:"type" binding:"required"`
	Name     string                  `json:"name" binding:"required"`
	URL      string                  `json:"url" binding:"required"`
	Icon     string                  `json:"icon"`
	Position *int                    `json:"order"`
	IsActive *bool                   `json:"isActive"`
}

// Create inserts a footer link; a missing order appends within its type group.
func (h *FooterHandler) Create(c *gin.Context) {
	var req createFooterLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Type != database.FooterLinkSocial && req.Type != database.FooterLinkPortal {
		BadRequest(c, "unknown link type")
		return
	}

	ctx := c.Request.Context()

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		var last database.FooterLink
		err := h.db.WithContext(ctx).
			Where("type = ?", req.Type).
			Order("position DESC").
			First(&last).Error
		switch {
		case err == nil:
			position = last.Position + 1
		case errors.Is(err, gorm.ErrRecordNotFound):
			position = 0
		default:
			Internal(c, "failed to query footer links")
			return
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	link := database.FooterLink{
		Type:     req.Type,
		Name:     req.Name,
		URL:      req.URL,
		Icon:     req.Icon,
		Position: position,
		IsActive: isActive,
	}

	if err := h.db.WithContext(ctx).Create(&link).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create footer link failed", slog.Any("error", err))
		Internal(c, "failed to create link")
		return
	}

	c.JSON(http.StatusCreated, link)
}

type updateFooterLinkRequest struct {
	Type     *database.FooterLinkType `json:"type"`
	Name     *string                  `json:"name"`
	URL      *string                  `json:"url"`
	Icon     *string                  `json:"icon"`
	Position *int                     `json:"order"`
	IsActive *bool                    `json:"isActive"`
}

// Update patches a footer link.
func (h *FooterHandler) Update(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid link id")
		return
	}

	var req updateFooterLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var link database.FooterLink
	if err := h.db.WithContext(ctx).First(&link, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "link not found")
			return
		}
		Internal(c, "failed to query link")
		return
	}

	updates := map[string]any{}
	if req.Type != nil {
		if *req.Type != database.FooterLinkSocial && *req.Type != database.FooterLinkPortal {
			BadRequest(c, "unknown link type")
			return
		}
		updates["type"] = *req.Type
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.URL != nil {
		updates["url"] = *req.URL
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&link).Updates(updates).Error; err != nil {
			middleware.LoggerFromContext(c).Error("update footer link failed", slog.Any("error", err))
			Internal(c, "failed to update link")
			return
		}
	}

	if err := h.db.WithContext(ctx).First(&link, "id = ?", link.ID).Error; err != nil {
		Internal(c, "failed to reload link")
		return
	}

	c.JSON(http.StatusOK, link)
}

// Delete removes a footer link.
func (h *FooterHandler) Delete(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid link id")
		return
	}

	result := h.db.WithContext(c.Request.Context()).Delete(&database.FooterLink{}, "id = ?", id)
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("delete footer link failed", slog.Any("error", result.Error))
		Internal(c, "failed to delete link")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "link not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// Reorder rewrites positions of the given links to match the list order.
func (h *FooterHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range req.IDs {
			if err := tx.Model(&database.FooterLink{}).
				Where("id = ?", id).
				Update("position", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("reorder footer links failed", slog.Any("error", err))
		Internal(c, "failed to reorder links")
		return
	}

	h.FindAll(c)
}
