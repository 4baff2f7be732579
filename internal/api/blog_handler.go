package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/database"
	"ongelEstate/internal/query"
	"ongelEstate/internal/slug"
)

// BlogHandler serves blog articles: public published feed and back-office CRUD.
type BlogHandler struct {
	db *gorm.DB
}

func NewBlogHandler(db *gorm.DB) *BlogHandler {
	return &BlogHandler{db: db}
}

const defaultBlogPageSize = 10

var blogSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"publishedAt": "published_at",
	"title":       "title",
}

type blogFilter struct {
	pageParams
	Status database.BlogPostStatus `form:"status"`
	Search string                  `form:"search"`
}

func (h *BlogHandler) applySearch(tx *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return tx
	}
	pattern := "%" + search + "%"
	return tx.Where("LOWER(title) LIKE LOWER(?) OR LOWER(excerpt) LIKE LOWER(?)", pattern, pattern)
}

// FindPublished lists published posts for the public site, newest first.
func (h *BlogHandler) FindPublished(c *gin.Context) {
	var f blogFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		BadRequest(c, err.Error())
		return
	}

	tx := h.db.WithContext(c.Request.Context()).
		Model(&database.BlogPost{}).
		Where("status = ?", database.BlogPublished)
	tx = h.applySearch(tx, f.Search)

	page, limit := query.ClampPage(f.Page, f.Limit, defaultBlogPageSize)
	order := query.ResolveSort(f.SortBy, f.SortOrder, "publishedAt", blogSortColumns)

	result, err := query.Run[database.BlogPost](tx, order, page, limit)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list published posts failed", slog.Any("error", err))
		Internal(c, "failed to list posts")
		return
	}

	c.JSON(http.StatusOK, result)
}

// FindBySlug returns one published post by its slug.
func (h *BlogHandler) FindBySlug(c *gin.Context) {
	var post database.BlogPost
	err := h.db.WithContext(c.Request.Context()).
		Where("slug = ? AND status = ?", c.Param("slug"), database.BlogPublished).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "post not found")
			return
		}
		Internal(c, "failed to query post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// FindAll lists all posts for the back office regardless of status.
func (h *BlogHandler) FindAll(c *gin.Context) {
	var f blogFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		BadRequest(c, err.Error())
		return
	}

	tx := h.db.WithContext(c.Request.Context()).Model(&database.BlogPost{})
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	tx = h.applySearch(tx, f.Search)

	page, limit := query.ClampPage(f.Page, f.Limit, defaultBlogPageSize)
	order := query.ResolveSort(f.SortBy, f.SortOrder, "createdAt", blogSortColumns)

	result, err := query.Run[database.BlogPost](tx, order, page, limit)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list posts failed", slog.Any("error", err))
		Internal(c, "failed to list posts")
		return
	}

	c.JSON(http.StatusOK, result)
}

// FindOne returns one post by id, any status.
func (h *BlogHandler) FindOne(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid post id")
		return
	}

	var post database.BlogPost
	if err := h.db.WithContext(c.Request.Context()).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "post not found")
			return
		}
		Internal(c, "failed to query post")
		return
	}

	c.JSON(http.StatusOK, post)
}

type createBlogPostRequest struct {
	Title          string                  `json:"title" binding:"required"`
	Slug           string                  `json:"slug"`
	Excerpt        string                  `json:"excerpt"`
	Content        string                  `json:"content" binding:"required"`
	CoverImageURL  string                  `json:"coverImageUrl"`
	Status         database.BlogPostStatus `json:"status"`
	PublishedAt    *time.Time              `json:"publishedAt"`
	SeoTitle       string                  `json:"seoTitle"`
	SeoDescription string                  `json:"seoDescription"`
	SeoKeywords    string                  `json:"seoKeywords"`
}

// Create inserts a post. A missing slug is derived from the title; either way
// the slug is normalized and made unique by suffixing a counter.
func (h *BlogHandler) Create(c *gin.Context) {
	var req createBlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	base := req.Slug
	if base == "" {
		base = req.Title
	}
	uniqueSlug, err := h.uniqueSlug(ctx, base, uuid.Nil)
	if err != nil {
		middleware.LoggerFromContext(c).Error("resolve slug failed", slog.Any("error", err))
		Internal(c, "failed to resolve slug")
		return
	}

	status := req.Status
	if status == "" {
		status = database.BlogDraft
	}

	post := database.BlogPost{
		Slug:           uniqueSlug,
		Title:          req.Title,
		Excerpt:        req.Excerpt,
		Content:        req.Content,
		CoverImageURL:  req.CoverImageURL,
		Status:         status,
		SeoTitle:       req.SeoTitle,
		SeoDescription: req.SeoDescription,
		SeoKeywords:    req.SeoKeywords,
	}
	// An explicit publishedAt wins; otherwise publishing stamps now.
	switch {
	case req.PublishedAt != nil:
		post.PublishedAt = req.PublishedAt
	case status == database.BlogPublished:
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := h.db.WithContext(ctx).Create(&post).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create post failed", slog.Any("error", err))
		Internal(c, "failed to create post")
		return
	}

	c.JSON(http.StatusCreated, post)
}

type updateBlogPostRequest struct {
	Title          *string                  `json:"title"`
	Slug           *string                  `json:"slug"`
	Excerpt        *string                  `json:"excerpt"`
	Content        *string                  `json:"content"`
	CoverImageURL  *string                  `json:"coverImageUrl"`
	Status         *database.BlogPostStatus `json:"status"`
	PublishedAt    *time.Time               `json:"publishedAt"`
	SeoTitle       *string                  `json:"seoTitle"`
	SeoDescription *string                  `json:"seoDescription"`
	SeoKeywords    *string                  `json:"seoKeywords"`
}

// Update patches a post. The first transition to published stamps
// publishedAt; unpublishing keeps the original timestamp.
func (h *BlogHandler) Update(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid post id")
		return
	}

	var req updateBlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var post database.BlogPost
	if err := h.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "post not found")
			return
		}
		Internal(c, "failed to query post")
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Slug != nil && *req.Slug != post.Slug {
		uniqueSlug, err := h.uniqueSlug(ctx, *req.Slug, post.ID)
		if err != nil {
			Internal(c, "failed to resolve slug")
			return
		}
		updates["slug"] = uniqueSlug
	}
	if req.Excerpt != nil {
		updates["excerpt"] = *req.Excerpt
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.CoverImageURL != nil {
		updates["cover_image_url"] = *req.CoverImageURL
	}
	if req.SeoTitle != nil {
		updates["seo_title"] = *req.SeoTitle
	}
	if req.SeoDescription != nil {
		updates["seo_description"] = *req.SeoDescription
	}
	if req.SeoKeywords != nil {
		updates["seo_keywords"] = *req.SeoKeywords
	}
	if req.Status != nil {
		updates["status"] = *req.Status
		if *req.Status == database.BlogPublished && post.PublishedAt == nil {
			updates["published_at"] = time.Now()
		}
	}
	if req.PublishedAt != nil {
		updates["published_at"] = *req.PublishedAt
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&post).Updates(updates).Error; err != nil {
			middleware.LoggerFromContext(c).Error("update post failed", slog.Any("error", err))
			Internal(c, "failed to update post")
			return
		}
	}

	if err := h.db.WithContext(ctx).First(&post, "id = ?", post.ID).Error; err != nil {
		Internal(c, "failed to reload post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// Delete removes a post.
func (h *BlogHandler) Delete(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid post id")
		return
	}

	result := h.db.WithContext(c.Request.Context()).Delete(&database.BlogPost{}, "id = ?", id)
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("delete post failed", slog.Any("error", result.Error))
		Internal(c, "failed to delete post")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "post not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// uniqueSlug normalizes the candidate and probes the table until a free slug
// is found, ignoring the row being updated.
func (h *BlogHandler) uniqueSlug(ctx context.Context, candidate string, selfID uuid.UUID) (string, error) {
	base := slug.Normalize(candidate)
	if base == "" {
		base = "post"
	}

	return slug.EnsureUnique(base, func(s string) (bool, error) {
		tx := h.db.WithContext(ctx).Model(&database.BlogPost{}).Where("slug = ?", s)
		if selfID != uuid.Nil {
			tx = tx.Where("id <> ?", selfID)
		}
		var count int64
		if err := tx.Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	})
}
