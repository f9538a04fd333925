package validation

import (
	"fmt"
	"strings"
)

const (
	MinWorkers = 1
	MaxWorkers = 20
)

func ValidateWorkerCount(workers int) error {
	if workers < MinWorkers || workers > MaxWorkers {
		return fmt.Errorf("worker count must be between %d and %d, got %d", MinWorkers, MaxWorkers, workers)
	}
	return nil
}

func ValidateCourseID(id int) error {
	if id <= 0 {
		return fmt.Errorf("course ID must be a positive integer, got %d", id)
	}
	return nil
}

func ValidateLessonID(id int) error {
	if id <= 0 {
		return fmt.Errorf("lesson ID must be a positive integer, got %d", id)
	}
	return nil
}

func ValidateNonEmptyString(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}

func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("invalid email address: %s", email)
	}
	return nil
}

// ValidateSlug accepts the course slug charset used by the platform:
// lowercase letters, digits, and hyphens.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	for _, r := range slug {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("invalid course slug: %s", slug)
		}
	}
	return nil
}

func ValidatePage(page int) error {
	if page < 1 {
		return fmt.Errorf("page must be a positive integer, got %d", page)
	}
	return nil
}

func ValidateExportFormat(format string) error {
	validFormats := map[string]bool{
		"json": true,
		"csv":  true,
	}
	if !validFormats[format] {
		return fmt.Errorf("invalid export format: %s (must be one of: json, csv)", format)
	}
	return nil
}
