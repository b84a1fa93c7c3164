package model

import (
	"time"

	"gorm.io/datatypes"
)

// Ebook represents a downloadable worksheet/resource record
type Ebook struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"type:text;not null" json:"title"`
	Slug        string         `gorm:"uniqueIndex;not null;type:text" json:"slug"`
	Category    string         `gorm:"type:text;index" json:"category"` // Category name, not a declared foreign key
	Author      string         `gorm:"type:text" json:"author"`
	Description string         `gorm:"type:text" json:"description"`
	CoverImage  string         `gorm:"type:text" json:"cover_image"`
	FileURL     string         `gorm:"type:text" json:"file_url"`
	FileKey     string         `gorm:"type:text" json:"-"` // Spaces object key; presigned on download when set
	Tags        datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	Downloads   int            `gorm:"default:0" json:"downloads"`
	Featured    bool           `gorm:"default:false" json:"featured"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName specifies the table name for Ebook
func (Ebook) TableName() string {
	return "ebooks"
}

// EbookCategory groups ebooks for the worksheets catalog
type EbookCategory struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null;type:text" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null;type:text" json:"slug"`
	Color       string `gorm:"type:text" json:"color"`
	Icon        string `gorm:"type:text" json:"icon"`
	EbooksCount int    `gorm:"default:0" json:"ebooks_count"` // Reconciled by a scheduled job
}

// TableName specifies the table name for EbookCategory
func (EbookCategory) TableName() string {
	return "ebook_categories"
}
