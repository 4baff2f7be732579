package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ongelEstate/internal/api/middleware"
	"ongelEstate/internal/database"
	"ongelEstate/internal/query"
	"ongelEstate/internal/storage"
	"ongelEstate/internal/tasks"
)

// ObjectStore is the slice of the storage client the listing handler uses.
type ObjectStore interface {
	UploadFile(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	DeleteObject(ctx context.Context, objectKey string) error
	PublicURL(objectKey string) string
}

// TaskEnqueuer abstracts the asynq client for tests.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// UploadScanner checks upload content before it is stored. A nil scanner
// disables the antivirus hop.
type UploadScanner interface {
	Scan(reader io.Reader) error
}

// ListingHandler serves the listings resource: public search, role-scoped
// CRUD and image upload orchestration.
type ListingHandler struct {
	db          *gorm.DB
	storage     ObjectStore
	asynqClient TaskEnqueuer
	scanner     UploadScanner
}

// NewListingHandler constructs the handler.
func NewListingHandler(db *gorm.DB, store ObjectStore, asynqClient TaskEnqueuer, scanner UploadScanner) *ListingHandler {
	return &ListingHandler{db: db, storage: store, asynqClient: asynqClient, scanner: scanner}
}

const defaultListingPageSize = 12

// listingSortColumns whitelists the sortable API fields. Anything else falls
// back to createdAt.
var listingSortColumns = map[string]string{
	"price":     "price",
	"createdAt": "created_at",
	"netArea":   "net_area",
	"location":  "location",
}

type listingFilter struct {
	pageParams
	Status    string   `form:"status"`
	Currency  string   `form:"currency"`
	Location  string   `form:"location"`
	RoomCount string   `form:"roomCount"`
	MinPrice  *float64 `form:"minPrice"`
	MaxPrice  *float64 `form:"maxPrice"`
	MinArea   *float64 `form:"minArea"`
	MaxArea   *float64 `form:"maxArea"`
}

func (h *ListingHandler) applyFilters(tx *gorm.DB, f listingFilter) *gorm.DB {
	if f.Currency != "" {
		tx = tx.Where("currency = ?", f.Currency)
	}
	tx = query.TextSearch(tx, "location", f.Location)
	tx = query.TextSearch(tx, "room_count", f.RoomCount)
	tx = query.NumericRange(tx, "price", f.MinPrice, f.MaxPrice)
	tx = query.NumericRange(tx, "net_area", f.MinArea, f.MaxArea)
	return tx
}

// activeListingStatuses are the only ones visible on the public site.
var activeListingStatuses = []database.ListingStatus{
	database.ListingActiveForSale,
	database.ListingActiveForRent,
}

// FindPublic lists active listings for the public site, no auth required.
func (h *ListingHandler) FindPublic(c *gin.Context) {
	var f listingFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		BadRequest(c, err.Error())
		return
	}

	tx := h.db.WithContext(c.Request.Context()).
		Model(&database.Listing{}).
		Preload("Images").
		Where("status IN ?", activeListingStatuses)
	tx = h.applyFilters(tx, f)

	page, limit := query.ClampPage(f.Page, f.Limit, defaultListingPageSize)
	order := query.ResolveSort(f.SortBy, f.SortOrder, "createdAt", listingSortColumns)

	result, err := query.Run[database.Listing](tx, order, page, limit)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list public listings failed", slog.Any("error", err))
		Internal(c, "failed to list listings")
		return
	}

	c.JSON(http.StatusOK, result)
}

// FindOnePublic returns one active listing; inactive/sold ones 404.
func (h *ListingHandler) FindOnePublic(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		BadRequest(c, "invalid listing id")
		return
	}

	var listing database.Listing
	err = h.db.WithContext(c.Request.Context()).
		Preload("Images").
		Where("id = ? AND status IN ?", id, activeListingStatuses).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "listing not found")
			return
		}
		Internal(c, "failed to query listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// FindAll lists listings for the back office, scoped to the agent's own rows.
func (h *ListingHandler) FindAll(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var f listingFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		BadRequest(c, err.Error())
		return
	}

	tx := h.db.WithContext(c.Request.Context()).
		Model(&database.Listing{}).
		Preload("Images").
		Preload("AssignedAgent")
	tx = query.ForAgent(tx, user.Role, user.ID)
	if f.Status != "" {
		tx = tx.Where("status = ?", f.Status)
	}
	tx = h.applyFilters(tx, f)

	page, limit := query.ClampPage(f.Page, f.Limit, defaultListingPageSize)
	order := query.ResolveSort(f.SortBy, f.SortOrder, "createdAt", listingSortColumns)

	result, err := query.Run[database.Listing](tx, order, page, limit)
	if err != nil {
		middleware.LoggerFromContext(c).Error("list listings failed", slog.Any("error", err))
		Internal(c, "failed to list listings")
		return
	}

	c.JSON(http.StatusOK, result)
}

type createListingRequest struct {
	Title           database.MultilingualText `json:"title" binding:"required"`
	Description     database.MultilingualText `json:"description" binding:"required"`
	Price           float64                   `json:"price" binding:"gte=0"`
	Currency        database.Currency         `json:"currency"`
	Status          database.ListingStatus    `json:"status" binding:"required"`
	Location        string                    `json:"location" binding:"required"`
	Latitude        *float64                  `json:"latitude"`
	Longitude       *float64                  `json:"longitude"`
	NetArea         float64                   `json:"netArea" binding:"gte=0"`
	GrossArea       *float64                  `json:"grossArea"`
	RoomCount       string                    `json:"roomCount"`
	VirtualTourURL  *string                   `json:"virtualTourUrl"`
	VideoURL        *string                   `json:"videoUrl"`
	AssignedAgentID uuid.UUID                 `json:"assignedAgentId"`
}

// normalizeOptionalURL maps empty strings to nil so optional URL columns stay NULL.
func normalizeOptionalURL(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}

// Create inserts a listing. Agents may only assign listings to themselves.
func (h *ListingHandler) Create(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	if user.Role == database.RoleAgent {
		req.AssignedAgentID = user.ID
	}
	if req.AssignedAgentID == uuid.Nil {
		BadRequest(c, "assignedAgentId is required")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = database.CurrencyTRY
	}

	listing := database.Listing{
		Title:           datatypes.NewJSONType(req.Title),
		Description:     datatypes.NewJSONType(req.Description),
		Price:           req.Price,
		Currency:        currency,
		Status:          req.Status,
		Location:        req.Location,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		NetArea:         req.NetArea,
		GrossArea:       req.GrossArea,
		RoomCount:       req.RoomCount,
		VirtualTourURL:  normalizeOptionalURL(req.VirtualTourURL),
		VideoURL:        normalizeOptionalURL(req.VideoURL),
		AssignedAgentID: req.AssignedAgentID,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&listing).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create listing failed", slog.Any("error", err))
		Internal(c, "failed to create listing")
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// FindOne returns a listing: 404 when absent, 403 when present but not owned.
func (h *ListingHandler) FindOne(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	listing, err := h.getListingForUser(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

type updateListingRequest struct {
	Title           *database.MultilingualText `json:"title"`
	Description     *database.MultilingualText `json:"description"`
	Price           *float64                   `json:"price" binding:"omitempty,gte=0"`
	Currency        *database.Currency         `json:"currency"`
	Status          *database.ListingStatus    `json:"status"`
	Location        *string                    `json:"location"`
	Latitude        *float64                   `json:"latitude"`
	Longitude       *float64                   `json:"longitude"`
	NetArea         *float64                   `json:"netArea" binding:"omitempty,gte=0"`
	GrossArea       *float64                   `json:"grossArea"`
	RoomCount       *string                    `json:"roomCount"`
	VirtualTourURL  *string                    `json:"virtualTourUrl"`
	VideoURL        *string                    `json:"videoUrl"`
	AssignedAgentID *uuid.UUID                 `json:"assignedAgentId"`
}

// Update patches a listing. Agents cannot move a listing to another agent.
func (h *ListingHandler) Update(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	listing, err := h.getListingForUser(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.respondListingError(c, err)
		return
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = datatypes.NewJSONType(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = datatypes.NewJSONType(*req.Description)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Currency != nil {
		updates["currency"] = *req.Currency
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Latitude != nil {
		updates["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		updates["longitude"] = *req.Longitude
	}
	if req.NetArea != nil {
		updates["net_area"] = *req.NetArea
	}
	if req.GrossArea != nil {
		updates["gross_area"] = *req.GrossArea
	}
	if req.RoomCount != nil {
		updates["room_count"] = *req.RoomCount
	}
	if req.VirtualTourURL != nil {
		updates["virtual_tour_url"] = normalizeOptionalURL(req.VirtualTourURL)
	}
	if req.VideoURL != nil {
		updates["video_url"] = normalizeOptionalURL(req.VideoURL)
	}
	if req.AssignedAgentID != nil && user.Role == database.RoleAdmin {
		updates["assigned_agent_id"] = *req.AssignedAgentID
	}

	ctx := c.Request.Context()
	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(listing).Updates(updates).Error; err != nil {
			middleware.LoggerFromContext(c).Error("update listing failed", slog.Any("error", err))
			Internal(c, "failed to update listing")
			return
		}
	}

	if err := h.db.WithContext(ctx).Preload("Images").First(listing, "id = ?", listing.ID).Error; err != nil {
		Internal(c, "failed to reload listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// Delete removes a listing with its image rows; bucket objects are cleaned
// up by the background worker (best effort).
func (h *ListingHandler) Delete(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	listing, err := h.getListingForUser(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.respondListingError(c, err)
		return
	}

	ctx := c.Request.Context()

	var images []database.ListingImage
	if err := h.db.WithContext(ctx).Where("listing_id = ?", listing.ID).Find(&images).Error; err != nil {
		Internal(c, "failed to load listing images")
		return
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", listing.ID).Delete(&database.ListingImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&database.Listing{}, "id = ?", listing.ID).Error
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("delete listing failed", slog.Any("error", err))
		Internal(c, "failed to delete listing")
		return
	}

	h.enqueueStorageCleanup(c, images)

	c.Status(http.StatusNoContent)
}

func (h *ListingHandler) enqueueStorageCleanup(c *gin.Context, images []database.ListingImage) {
	if h.asynqClient == nil || len(images) == 0 {
		return
	}

	keys := make([]string, 0, len(images))
	for _, img := range images {
		if img.Key != "" {
			keys = append(keys, img.Key)
		}
	}
	if len(keys) == 0 {
		return
	}

	task, err := tasks.NewStorageCleanupTask(keys, middleware.GetCorrelationID(c))
	if err == nil {
		_, err = h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	}
	if err != nil {
		// Orphaned objects are tolerable; the database rows are already gone.
		middleware.LoggerFromContext(c).Error("enqueue storage cleanup failed", slog.Any("error", err))
	}
}

// UploadImages stores up to 10 image files in the bucket and appends rows
// continuing the current display order.
func (h *ListingHandler) UploadImages(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	listing, err := h.getListingForUser(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.respondListingError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, "invalid multipart form")
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		BadRequest(c, "no files uploaded")
		return
	}
	if len(files) > storage.MaxUploadFiles {
		BadRequest(c, "too many files")
		return
	}

	for _, file := range files {
		if err := storage.ValidateUpload(file.Header.Get("Content-Type"), file.Size); err != nil {
			BadRequest(c, err.Error())
			return
		}
	}

	if h.scanner != nil {
		for _, file := range files {
			switch err := h.scanFile(file); {
			case err == nil:
			case errors.Is(err, storage.ErrMaliciousFile):
				BadRequest(c, "malicious file detected")
				return
			default:
				middleware.LoggerFromContext(c).Error("scan upload failed",
					slog.String("filename", file.Filename),
					slog.Any("error", err),
				)
				Internal(c, "failed to scan file")
				return
			}
		}
	}

	ctx := c.Request.Context()

	var maxPosition int
	var last database.ListingImage
	switch err := h.db.WithContext(ctx).
		Where("listing_id = ?", listing.ID).
		Order("position DESC").
		First(&last).Error; {
	case err == nil:
		maxPosition = last.Position + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
		maxPosition = 0
	default:
		Internal(c, "failed to query listing images")
		return
	}

	images := make([]database.ListingImage, 0, len(files))
	for _, file := range files {
		img, err := h.storeImage(ctx, listing.ID, file, maxPosition)
		if err != nil {
			middleware.LoggerFromContext(c).Error("upload listing image failed",
				slog.String("filename", file.Filename),
				slog.Any("error", err),
			)
			Internal(c, "failed to upload image")
			return
		}
		images = append(images, *img)
		maxPosition++
	}

	if err := h.db.WithContext(ctx).Create(&images).Error; err != nil {
		middleware.LoggerFromContext(c).Error("persist listing images failed", slog.Any("error", err))
		Internal(c, "failed to save images")
		return
	}

	c.JSON(http.StatusCreated, images)
}

func (h *ListingHandler) scanFile(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return err
	}
	defer reader.Close()
	return h.scanner.Scan(reader)
}

func (h *ListingHandler) storeImage(ctx context.Context, listingID uuid.UUID, file *multipart.FileHeader, position int) (*database.ListingImage, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	key := storage.BuildObjectKey(file.Filename, time.Now())
	contentType := file.Header.Get("Content-Type")
	if err := h.storage.UploadFile(ctx, key, reader, file.Size, contentType); err != nil {
		return nil, err
	}

	return &database.ListingImage{
		URL:       h.storage.PublicURL(key),
		Key:       key,
		Position:  position,
		ListingID: listingID,
	}, nil
}

// DeleteImage removes one image row. The bucket delete is best effort: when
// it fails the failure is logged and the row is removed anyway.
func (h *ListingHandler) DeleteImage(c *gin.Context) {
	user, ok := actingUserFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	listing, err := h.getListingForUser(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		h.respondListingError(c, err)
		return
	}

	imageID, err := parseUUIDParam(c, "imageId")
	if err != nil {
		BadRequest(c, "invalid image id")
		return
	}

	ctx := c.Request.Context()

	var image database.ListingImage
	if err := h.db.WithContext(ctx).
		Where("id = ? AND listing_id = ?", imageID, listing.ID).
		First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "image not found")
			return
		}
		Internal(c, "failed to query image")
		return
	}

	if image.Key != "" {
		if err := h.storage.DeleteObject(ctx, image.Key); err != nil {
			middleware.LoggerFromContext(c).Error("delete bucket object failed",
				slog.String("key", image.Key),
				slog.Any("error", err),
			)
		}
	}

	if err := h.db.WithContext(ctx).Delete(&database.ListingImage{}, "id = ?", image.ID).Error; err != nil {
		Internal(c, "failed to delete image")
		return
	}

	c.Status(http.StatusNoContent)
}

// getListingForUser loads a listing and applies the ownership rule:
// absent rows surface as not-found, rows owned by someone else as forbidden.
func (h *ListingHandler) getListingForUser(ctx context.Context, idParam string, user actingUser) (*database.Listing, error) {
	id, err := uuid.Parse(idParam)
	if err != nil {
		return nil, errInvalidID
	}

	var listing database.Listing
	if err := h.db.WithContext(ctx).
		Preload("Images").
		First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}

	agentID := listing.AssignedAgentID
	if !query.OwnedBy(user.Role, &agentID, user.ID) {
		return nil, errForbidden
	}

	return &listing, nil
}

func (h *ListingHandler) respondListingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidID):
		BadRequest(c, "invalid listing id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "listing not found")
	case errors.Is(err, errForbidden):
		Forbidden(c, "you do not have permission to access this listing")
	default:
		Internal(c, "failed to query listing")
	}
}
