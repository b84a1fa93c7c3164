package worksheet

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/adiyogi/wellness-api/model"
	"github.com/adiyogi/wellness-api/services/storage"
	"github.com/adiyogi/wellness-api/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DefaultListLimit caps the ebook listing when the client does not ask for one
const DefaultListLimit = 30

// PresignExpiry is how long a generated download link stays valid
const PresignExpiry = 10 * time.Minute

// WorksheetHandler handles the ebook catalog and downloads
type WorksheetHandler struct {
	db     *gorm.DB
	spaces *storage.SpacesClient // nil when Spaces is not configured
}

// NewWorksheetHandler creates a new worksheet handler
func NewWorksheetHandler(db *gorm.DB, spaces *storage.SpacesClient) *WorksheetHandler {
	return &WorksheetHandler{
		db:     db,
		spaces: spaces,
	}
}

// ListEbooks handles GET /api/worksheets/ebooks. Filters are applied before
// the row limit so a category filter never loses rows to truncation.
func (h *WorksheetHandler) ListEbooks(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultListLimit)))
	if err != nil || limit < 1 {
		return response.BadRequest(c, "Invalid limit")
	}

	query := h.db.Model(&model.Ebook{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if c.Query("featured") == "true" {
		query = query.Where("featured = ?", true)
	}

	var ebooks []model.Ebook
	if err := query.Order("downloads DESC, created_at DESC").
		Limit(limit).
		Find(&ebooks).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch ebooks")
	}

	return response.Success(c, ebooks)
}

// ListCategories handles GET /api/worksheets/categories
func (h *WorksheetHandler) ListCategories(c *fiber.Ctx) error {
	var categories []model.EbookCategory
	if err := h.db.Order("name ASC").Find(&categories).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch categories")
	}

	return response.Success(c, categories)
}

// DownloadEbook handles POST /api/worksheets/ebooks/:slug/download. The
// download counter is incremented in SQL so concurrent downloads are not lost.
func (h *WorksheetHandler) DownloadEbook(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var ebook model.Ebook
	if err := h.db.Where("slug = ?", slug).First(&ebook).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Ebook not found")
		}
		return response.InternalServerError(c, "Failed to look up ebook")
	}

	if err := h.db.Model(&model.Ebook{}).
		Where("id = ?", ebook.ID).
		UpdateColumn("downloads", gorm.Expr("downloads + ?", 1)).Error; err != nil {
		return response.InternalServerError(c, "Failed to record download")
	}

	if err := h.db.First(&ebook, ebook.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to reload ebook")
	}

	downloadURL := ebook.FileURL
	if h.spaces != nil && ebook.FileKey != "" {
		presigned, err := h.spaces.GetPresignedURL(ebook.FileKey, PresignExpiry)
		if err != nil {
			log.Printf("Failed to presign download URL for %s: %v", ebook.Slug, err)
		} else {
			downloadURL = presigned
		}
	}

	return response.Success(c, fiber.Map{
		"ebook":        ebook,
		"download_url": downloadURL,
	})
}
