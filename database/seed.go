package database

import (
	"fmt"
	"log"

	"github.com/adiyogi/wellness-api/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// RunSeeds runs all seed functions
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedEbookCategories(); err != nil {
		return fmt.Errorf("failed to seed ebook categories: %w", err)
	}

	if err := s.SeedEbooks(); err != nil {
		return fmt.Errorf("failed to seed ebooks: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// SeedEbookCategories creates the worksheet categories if they do not exist
func (s *Seeder) SeedEbookCategories() error {
	categories := []model.EbookCategory{
		{Name: "Anxiety", Slug: "anxiety", Color: "#7C9E8F", Icon: "wind"},
		{Name: "Depression", Slug: "depression", Color: "#8E7C9E", Icon: "cloud-rain"},
		{Name: "Mindfulness", Slug: "mindfulness", Color: "#9E8F7C", Icon: "lotus"},
		{Name: "Sleep", Slug: "sleep", Color: "#7C8A9E", Icon: "moon"},
		{Name: "Relationships", Slug: "relationships", Color: "#9E7C85", Icon: "heart"},
	}

	for _, category := range categories {
		var existing model.EbookCategory
		err := s.db.Where("slug = ?", category.Slug).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		if err := s.db.Create(&category).Error; err != nil {
			return err
		}
		log.Printf("Seeded ebook category: %s", category.Name)
	}

	return nil
}

// SeedEbooks creates a starter worksheet catalog if the table is empty
func (s *Seeder) SeedEbooks() error {
	var count int64
	if err := s.db.Model(&model.Ebook{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Printf("Ebook catalog already has %d entries, skipping seed", count)
		return nil
	}

	ebooks := []model.Ebook{
		{
			Title:       "Grounding Techniques for Anxious Moments",
			Slug:        "grounding-techniques",
			Category:    "Anxiety",
			Author:      "Adiyogi Wellness Team",
			Description: "A short workbook of 5-4-3-2-1 grounding and breathing exercises.",
			Tags:        datatypes.JSON([]byte(`["anxiety","breathing","grounding"]`)),
			Featured:    true,
		},
		{
			Title:       "A Gentle Guide to Better Sleep",
			Slug:        "gentle-guide-better-sleep",
			Category:    "Sleep",
			Author:      "Adiyogi Wellness Team",
			Description: "Sleep hygiene worksheets and a two-week sleep diary.",
			Tags:        datatypes.JSON([]byte(`["sleep","habits"]`)),
		},
		{
			Title:       "Daily Mindfulness Practice Journal",
			Slug:        "daily-mindfulness-journal",
			Category:    "Mindfulness",
			Author:      "Adiyogi Wellness Team",
			Description: "Prompts for a ten-minute daily mindfulness practice.",
			Tags:        datatypes.JSON([]byte(`["mindfulness","journaling"]`)),
			Featured:    true,
		},
	}

	for _, ebook := range ebooks {
		if err := s.db.Create(&ebook).Error; err != nil {
			return err
		}
		log.Printf("Seeded ebook: %s", ebook.Title)
	}

	return nil
}
