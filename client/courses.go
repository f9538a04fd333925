package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	courseTTL   = 60 * time.Second
	categoryTTL = 10 * time.Minute
)

// ListCoursesParams filter and page the course listing. Zero values are
// omitted from the query.
type ListCoursesParams struct {
	Category string
	Search   string
	Page     int
}

func (p ListCoursesParams) query() map[string]string {
	q := make(map[string]string)
	if p.Category != "" {
		q["category"] = p.Category
	}
	if p.Search != "" {
		q["search"] = p.Search
	}
	if p.Page > 0 {
		q["page"] = strconv.Itoa(p.Page)
	}
	return q
}

// ListCourses returns one page of published courses. Results are cached
// briefly and may be served stale when the network is unavailable.
func (c *Client) ListCourses(ctx context.Context, params ListCoursesParams) (*CoursePage, error) {
	payload, err := c.call(ctx, http.MethodGet, "/courses/", params.query(), nil, callOptions{
		EnableCache:      true,
		TTL:              courseTTL,
		FallbackEligible: true,
	})
	if err != nil {
		return nil, err
	}
	var page CoursePage
	if err := unmarshalLoose(payload, &page); err != nil {
		return nil, fmt.Errorf("failed to parse course list response: %w", err)
	}
	return &page, nil
}

// GetCourse returns the full course record for slug.
func (c *Client) GetCourse(ctx context.Context, slug string) (*Course, error) {
	if slug == "" {
		return nil, fmt.Errorf("course slug cannot be empty")
	}
	payload, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/courses/%s/", slug), nil, nil, callOptions{
		EnableCache:      true,
		TTL:              courseTTL,
		FallbackEligible: true,
	})
	if err != nil {
		return nil, err
	}
	var course Course
	if err := unmarshalLoose(payload, &course); err != nil {
		return nil, fmt.Errorf("failed to parse course response: %w", err)
	}
	return &course, nil
}

// Categories lists all course categories. These change rarely, so the
// TTL is long.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	payload, err := c.call(ctx, http.MethodGet, "/categories/", nil, nil, callOptions{
		EnableCache:      true,
		TTL:              categoryTTL,
		FallbackEligible: true,
	})
	if err != nil {
		return nil, err
	}
	var categories []Category
	if err := unmarshalLoose(payload, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories response: %w", err)
	}
	return categories, nil
}

// EnrollInCourse joins the authenticated account to a course. The cached
// enrollment list and the course detail (its student count just changed)
// are invalidated.
func (c *Client) EnrollInCourse(ctx context.Context, slug string) (*Enrollment, error) {
	if slug == "" {
		return nil, fmt.Errorf("course slug cannot be empty")
	}
	payload, err := c.call(ctx, http.MethodPost, fmt.Sprintf("/courses/%s/enroll/", slug), nil, nil, callOptions{})
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate("/user/me/enrollments/")
	c.cache.Invalidate(fmt.Sprintf("/courses/%s/", slug))

	var enrollment Enrollment
	if err := unmarshalLoose(payload, &enrollment); err != nil {
		return nil, fmt.Errorf("failed to parse enrollment response: %w", err)
	}
	return &enrollment, nil
}
