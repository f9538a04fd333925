package db

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CourseRecord is a course snapshot in the offline catalogue. Data holds the
// full course payload as JSON.
type CourseRecord struct {
	ID    int    `gorm:"primaryKey" json:"id"`
	Slug  string `gorm:"uniqueIndex" json:"slug"`
	Title string `gorm:"index" json:"title"` // Indexed for faster queries
	Data  string `json:"data"`
}

// PutCourse inserts or updates a course record in the catalogue.
// It takes the course ID, slug, title, and data as parameters and returns an error if the operation fails.
func PutCourse(id int, slug, title, data string) error {
	course := CourseRecord{
		ID:    id,
		Slug:  slug,
		Title: title,
		Data:  data,
	}

	return upsertCourse(course)
}

// upsertCourse performs an upsert operation on the course record.
func upsertCourse(course CourseRecord) error {
	if Db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	if err := Db.Clauses(
		clause.OnConflict{
			UpdateAll: true, // Updates all fields if there's a conflict on the primary key (ID).
		},
	).Create(&course).Error; err != nil {
		log.Error().Err(err).Msgf("Failed to upsert course with ID %d", course.ID)
		return err
	}

	log.Debug().Msgf("Course upserted: ID=%d, Slug=%s", course.ID, course.Slug)
	return nil
}

// EmptyCatalogue removes all records from the course catalogue.
// It returns an error if the operation fails.
func EmptyCatalogue() error {
	if Db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	if err := Db.Unscoped().Where("1 = 1").Delete(&CourseRecord{}).Error; err != nil {
		log.Error().Err(err).Msg("Failed to empty course catalogue")
		return err
	}

	log.Info().Msg("Course catalogue emptied successfully")
	return nil
}

// GetCatalogue retrieves all courses in the catalogue.
// It returns a slice of CourseRecord objects and an error if the operation fails.
func GetCatalogue() ([]CourseRecord, error) {
	if Db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var courses []CourseRecord
	if err := Db.Find(&courses).Error; err != nil {
		log.Error().Err(err).Msg("Failed to fetch courses from the database")
		return nil, err
	}

	log.Info().Msgf("Retrieved %d courses from the catalogue", len(courses))
	return courses, nil
}

// GetCourseByID retrieves a course from the catalogue by its ID.
// It returns a pointer to the CourseRecord object, or nil when no such course exists.
func GetCourseByID(id int) (*CourseRecord, error) {
	if Db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var course CourseRecord
	if err := Db.First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Course not found
		}
		return nil, fmt.Errorf("failed to retrieve course with ID %d: %w", id, err)
	}

	return &course, nil
}

// GetCourseBySlug retrieves a course from the catalogue by its slug.
// It returns a pointer to the CourseRecord object, or nil when no such course exists.
func GetCourseBySlug(slug string) (*CourseRecord, error) {
	if Db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var course CourseRecord
	if err := Db.First(&course, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Course not found
		}
		return nil, fmt.Errorf("failed to retrieve course with slug %s: %w", slug, err)
	}

	return &course, nil
}

// SearchCoursesByTitle searches for courses in the catalogue by title.
// It takes a title substring as a parameter and returns the matching CourseRecord objects.
func SearchCoursesByTitle(term string) ([]CourseRecord, error) {
	if Db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}

	var courses []CourseRecord
	if err := Db.Where("title LIKE ?", "%"+term+"%").Find(&courses).Error; err != nil {
		log.Error().Err(err).Msgf("Failed to search courses by title: %s", term)
		return nil, err
	}

	return courses, nil
}
