package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/database"
)

// CmsHandler serves the singleton content pages (about, services, mortgage).
type CmsHandler struct {
	db *gorm.DB
}

func NewCmsHandler(db *gorm.DB) *CmsHandler {
	return &CmsHandler{db: db}
}

var validCmsPageTypes = map[database.CmsPageType]bool{
	database.CmsPageAbout:    true,
	database.CmsPageServices: true,
	database.CmsPageMortgage: true,
}

// FindAll returns every CMS page, for the back-office content overview.
func (h *CmsHandler) FindAll(c *gin.Context) {
	var pages []database.CmsPage
	if err := h.db.WithContext(c.Request.Context()).Order("type ASC").Find(&pages).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list cms pages failed", slog.Any("error", err))
		Internal(c, "failed to list pages")
		return
	}

	c.JSON(http.StatusOK, pages)
}

// FindByType returns one page by its type; a page that was never created is 404.
func (h *CmsHandler) FindByType(c *gin.Context) {
	pageType := database.CmsPageType(c.Param("type"))
	if !validCmsPageTypes[pageType] {
		BadRequest(c, "unknown page type")
		return
	}

	var page database.CmsPage
	err := h.db.WithContext(c.Request.Context()).
		Where("type = ?", pageType).
		First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "page not found")
			return
		}
		Internal(c, "failed to query page")
		return
	}

	c.JSON(http.StatusOK, page)
}

type upsertCmsPageRequest struct {
	Title           database.MultilingualText `json:"title" binding:"required"`
	Content         database.MultilingualText `json:"content" binding:"required"`
	MetaTitle       datatypes.JSONMap         `json:"metaTitle"`
	MetaDescription datatypes.JSONMap         `json:"metaDescription"`
}

// Upsert creates the page on first write and replaces its content afterwards.
func (h *CmsHandler) Upsert(c *gin.Context) {
	pageType := database.CmsPageType(c.Param("type"))
	if !validCmsPageTypes[pageType] {
		BadRequest(c, "unknown page type")
		return
	}

	var req upsertCmsPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var page database.CmsPage
	err := h.db.WithContext(ctx).Where("type = ?", pageType).First(&page).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		page = database.CmsPage{
			Type:            pageType,
			Title:           datatypes.NewJSONType(req.Title),
			Content:         datatypes.NewJSONType(req.Content),
			MetaTitle:       req.MetaTitle,
			MetaDescription: req.MetaDescription,
		}
		if err := h.db.WithContext(ctx).Create(&page).Error; err != nil {
			middleware.LoggerFromContext(c).Error("create cms page failed", slog.Any("error", err))
			Internal(c, "failed to save page")
			return
		}
		c.JSON(http.StatusCreated, page)
		return
	case err != nil:
		Internal(c, "failed to query page")
		return
	}

	updates := map[string]any{
		"title":            datatypes.NewJSONType(req.Title),
		"content":          datatypes.NewJSONType(req.Content),
		"meta_title":       req.MetaTitle,
		"meta_description": req.MetaDescription,
	}
	if err := h.db.WithContext(ctx).Model(&page).Updates(updates).Error; err != nil {
		middleware.LoggerFromContext(c).Error("update cms page failed", slog.Any("error", err))
		Internal(c, "failed to save page")
		return
	}

	if err := h.db.WithContext(ctx).First(&page, "id = ?", page.ID).Error; err != nil {
		Internal(c, "failed to reload page")
		return
	}

	c.JSON(http.StatusOK, page)
}
