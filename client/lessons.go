package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const lessonTTL = 60 * time.Second

// ListLessons returns the lessons of a course in position order.
func (c *Client) ListLessons(ctx context.Context, courseSlug string) ([]Lesson, error) {
	if courseSlug == "" {
		return nil, fmt.Errorf("course slug cannot be empty")
	}
	payload, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/courses/%s/lessons/", courseSlug), nil, nil, callOptions{
		EnableCache:      true,
		TTL:              lessonTTL,
		FallbackEligible: true,
	})
	if err != nil {
		return nil, err
	}
	var lessons []Lesson
	if err := unmarshalLoose(payload, &lessons); err != nil {
		return nil, fmt.Errorf("failed to parse lessons response: %w", err)
	}
	return lessons, nil
}

// GetLesson returns a single lesson by id.
func (c *Client) GetLesson(ctx context.Context, id int) (*Lesson, error) {
	if id <= 0 {
		return nil, fmt.Errorf("lesson id must be positive")
	}
	payload, err := c.call(ctx, http.MethodGet, fmt.Sprintf("/lessons/%d/", id), nil, nil, callOptions{
		EnableCache:      true,
		TTL:              lessonTTL,
		FallbackEligible: true,
	})
	if err != nil {
		return nil, err
	}
	var lesson Lesson
	if err := unmarshalLoose(payload, &lesson); err != nil {
		return nil, fmt.Errorf("failed to parse lesson response: %w", err)
	}
	return &lesson, nil
}
