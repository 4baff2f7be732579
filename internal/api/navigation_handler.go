package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/database"
)

// NavigationHandler manages the header navigation tree.
type NavigationHandler struct {
	db *gorm.DB
}

func NewNavigationHandler(db *gorm.DB) *NavigationHandler {
	return &NavigationHandler{db: db}
}

// navTreeItem is a nav item with its dropdown children resolved.
type navTreeItem struct {
	database.NavItem
	Children []database.NavItem `json:"children,omitempty"`
}

// FindPublic returns the active navigation as an ordered tree: top-level
// items with their dropdown children nested.
func (h *NavigationHandler) FindPublic(c *gin.Context) {
	var items []database.NavItem
	err := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		middleware.LoggerFromContext(c).Error("list nav items failed", slog.Any("error", err))
		Internal(c, "failed to list navigation")
		return
	}

	c.JSON(http.StatusOK, buildNavTree(items))
}

func buildNavTree(items []database.NavItem) []navTreeItem {
	childrenByParent := make(map[uuid.UUID][]database.NavItem)
	for _, item := range items {
		if item.ParentID != nil {
			childrenByParent[*item.ParentID] = append(childrenByParent[*item.ParentID], item)
		}
	}

	tree := make([]navTreeItem, 0, len(items))
	for _, item := range items {
		if item.ParentID != nil {
			continue
		}
		tree = append(tree, navTreeItem{
			NavItem:  item,
			Children: childrenByParent[item.ID],
		})
	}
	return tree
}

// FindAll returns every nav item flat, including inactive ones.
func (h *NavigationHandler) FindAll(c *gin.Context) {
	var items []database.NavItem
	err := h.db.WithContext(c.Request.Context()).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		middleware.LoggerFromContext(c).Error("list nav items failed", slog.Any("error", err))
		Internal(c, "failed to list navigation")
		return
	}

	c.JSON(http.StatusOK, items)
}

type createNavItemRequest struct {
	Label    database.MultilingualText `json:"label" binding:"required"`
	Href     string                    `json:"href"`
	Type     database.NavItemType      `json:"type"`
	Position *int                      `json:"order"`
	IsActive *bool                     `json:"isActive"`
	ParentID *uuid.UUID                `json:"parentId"`
}

// Create inserts a nav item; a missing order places it after the current last.
func (h *NavigationHandler) Create(c *gin.Context) {
	var req createNavItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	itemType := req.Type
	if itemType == "" {
		itemType = database.NavItemLink
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		var last database.NavItem
		err := h.db.WithContext(ctx).Order("position DESC").First(&last).Error
		switch {
		case err == nil:
			position = last.Position + 1
		case errors.Is(err, gorm.ErrRecordNotFound):
			position = 0
		default:
			Internal(c, "failed to query navigation")
			return
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	if req.ParentID != nil {
		var parent database.NavItem
		if err := h.db.WithContext(ctx).First(&parent, "id = ?", *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				BadRequest(c, "parent item not found")
				return
			}
			Internal(c, "failed to query navigation")
			return
		}
	}

	item := database.NavItem{
		Label:    datatypes.NewJSONType(req.Label),
		Href:     req.Href,
		Type:     itemType,
		Position: position,
		IsActive: isActive,
		ParentID: req.ParentID,
	}

	if err := h.db.WithContext(ctx).Create(&item).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create nav item failed", slog.Any("error", err))
		Internal(c, "failed to create item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

type updateNavItemRequest struct {
	Label    *database.MultilingualText `json:"label"`
	Href     *string                    `json:"href"`
	Type     *database.NavItemType      `json:"type"`
	Position *int                       `json:"order"`
	IsActive *bool                      `json:"isActive"`
	ParentID *uuid.UUID                 `json:"parentId"`
}

// Update patches a nav item.
func (h *NavigationHandler) Update(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid item id")
		return
	}

	var req updateNavItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var item database.NavItem
	if err := h.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "item not found")
			return
		}
		Internal(c, "failed to query item")
		return
	}

	updates := map[string]any{}
	if req.Label != nil {
		updates["label"] = datatypes.NewJSONType(*req.Label)
	}
	if req.Href != nil {
		updates["href"] = *req.Href
	}
	if req.Type != nil {
		updates["type"] = *req.Type
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.ParentID != nil {
		if *req.ParentID == item.ID {
			BadRequest(c, "item cannot be its own parent")
			return
		}
		updates["parent_id"] = *req.ParentID
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&item).Updates(updates).Error; err != nil {
			middleware.LoggerFromContext(c).Error("update nav item failed", slog.Any("error", err))
			Internal(c, "failed to update item")
			return
		}
	}

	if err := h.db.WithContext(ctx).First(&item, "id = ?", item.ID).Error; err != nil {
		Internal(c, "failed to reload item")
		return
	}

	c.JSON(http.StatusOK, item)
}

// Delete removes a nav item together with its dropdown children.
func (h *NavigationHandler) Delete(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid item id")
		return
	}

	ctx := c.Request.Context()
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&database.NavItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&database.NavItem{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "item not found")
			return
		}
		middleware.LoggerFromContext(c).Error("delete nav item failed", slog.Any("error", err))
		Internal(c, "failed to delete item")
		return
	}

	c.Status(http.StatusNoContent)
}

type reorderRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1"`
}

// Reorder rewrites the positions of the given items to match the list order.
func (h *NavigationHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range req.IDs {
			if err := tx.Model(&database.NavItem{}).
				Where("id = ?", id).
				Update("position", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("reorder nav items failed", slog.Any("error", err))
		Internal(c, "failed to reorder items")
		return
	}

	h.FindAll(c)
}
