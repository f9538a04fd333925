package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/softTechSolutions2001/eduplatform-sub000/db"
	"github.com/softTechSolutions2001/eduplatform-sub000/pkg/pool"
)

// SyncCatalogue fetches every published course and mirrors it into the
// local database, so browsing and search work offline. It reports
// progress via the progressCb callback, which receives a value from 0.0
// to 1.0.
func (c *Client) SyncCatalogue(ctx context.Context, numWorkers int, progressCb func(float64)) error {
	slugs, err := c.fetchAllCourseSlugs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list courses: %w", err)
	}
	if len(slugs) == 0 {
		log.Info().Msg("No published courses found.")
		if progressCb != nil {
			progressCb(1.0)
		}
		return nil
	}

	if err := db.EmptyCatalogue(); err != nil {
		return fmt.Errorf("failed to empty catalogue: %w", err)
	}

	var processedCount atomic.Int64
	totalCourses := float64(len(slugs))

	workerFunc := func(ctx context.Context, slug string) error {
		// Count the course even when its fetch fails, so progress completes.
		defer func() {
			count := processedCount.Add(1)
			if progressCb != nil {
				progressCb(float64(count) / totalCourses)
			}
		}()

		payload, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/courses/%s/", slug), nil, nil, callOptions{})
		if err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("Failed to fetch course details")
			return nil
		}
		var course Course
		if err := unmarshalLoose(payload, &course); err != nil {
			log.Warn().Err(err).Str("slug", slug).Msg("Failed to parse course details")
			return nil
		}
		if course.Title != "" {
			if err := db.PutCourse(course.ID, course.Slug, course.Title, string(payload)); err != nil {
				log.Error().Err(err).Str("slug", slug).Msg("Failed to save course to DB")
			}
		}
		return nil
	}

	_ = pool.Run(ctx, slugs, numWorkers, workerFunc)

	return ctx.Err()
}

// fetchAllCourseSlugs pages through the course listing without touching
// the cache, so the snapshot is consistent.
func (c *Client) fetchAllCourseSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	seen := make(map[string]bool)

	for pageNum := 1; ; pageNum++ {
		payload, err := c.call(ctx, http.MethodGet, "/courses/",
			map[string]string{"page": strconv.Itoa(pageNum)}, nil, callOptions{})
		if err != nil {
			return nil, err
		}
		var page CoursePage
		if err := unmarshalLoose(payload, &page); err != nil {
			return nil, fmt.Errorf("failed to parse course list page %d: %w", pageNum, err)
		}
		if len(page.Results) == 0 {
			break
		}
		for _, course := range page.Results {
			if course.Slug == "" || seen[course.Slug] {
				continue
			}
			seen[course.Slug] = true
			slugs = append(slugs, course.Slug)
		}
		if page.Next == "" {
			break
		}
	}
	return slugs, nil
}
