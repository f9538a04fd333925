package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const instructorTTL = 30 * time.Second

// InstructorCourses lists the courses owned by the authenticated
// instructor, including unpublished ones.
func (c *Client) InstructorCourses(ctx context.Context) ([]Course, error) {
	payload, err := c.call(ctx, http.MethodGet, "/instructor/courses/", nil, nil, callOptions{
		EnableCache: true,
		TTL:         instructorTTL,
	})
	if err != nil {
		return nil, err
	}
	var courses []Course
	if err := unmarshalLoose(payload, &courses); err != nil {
		return nil, fmt.Errorf("failed to parse instructor courses response: %w", err)
	}
	return courses, nil
}

// CreateCourse creates a new course owned by the instructor. Course
// listings are invalidated so the next read sees it.
func (c *Client) CreateCourse(ctx context.Context, input CourseInput) (*Course, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("course title cannot be empty")
	}
	payload, err := c.call(ctx, http.MethodPost, "/instructor/courses/", nil, input, callOptions{})
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate("/courses/")

	var course Course
	if err := unmarshalLoose(payload, &course); err != nil {
		return nil, fmt.Errorf("failed to parse course response: %w", err)
	}
	return &course, nil
}

// UpdateCourse replaces the editable fields of a course.
func (c *Client) UpdateCourse(ctx context.Context, id int, input CourseInput) (*Course, error) {
	if id <= 0 {
		return nil, fmt.Errorf("course id must be positive")
	}
	payload, err := c.call(ctx, http.MethodPut, fmt.Sprintf("/instructor/courses/%d/", id), nil, input, callOptions{})
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate("/courses/")

	var course Course
	if err := unmarshalLoose(payload, &course); err != nil {
		return nil, fmt.Errorf("failed to parse course response: %w", err)
	}
	return &course, nil
}

// DeleteCourse removes a course and everything under it.
func (c *Client) DeleteCourse(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("course id must be positive")
	}
	_, err := c.call(ctx, http.MethodDelete, fmt.Sprintf("/instructor/courses/%d/", id), nil, nil, callOptions{})
	if err != nil {
		return err
	}
	c.cache.Invalidate("/courses/")
	c.cache.Invalidate("/lessons/")
	return nil
}

// CreateLesson adds a lesson to one of the instructor's courses.
func (c *Client) CreateLesson(ctx context.Context, input LessonInput) (*Lesson, error) {
	if input.CourseID <= 0 {
		return nil, fmt.Errorf("lesson course id must be positive")
	}
	if input.Title == "" {
		return nil, fmt.Errorf("lesson title cannot be empty")
	}
	payload, err := c.call(ctx, http.MethodPost, "/instructor/lessons/", nil, input, callOptions{})
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate("lessons/")

	var lesson Lesson
	if err := unmarshalLoose(payload, &lesson); err != nil {
		return nil, fmt.Errorf("failed to parse lesson response: %w", err)
	}
	return &lesson, nil
}

// UpdateLesson replaces the editable fields of a lesson.
func (c *Client) UpdateLesson(ctx context.Context, id int, input LessonInput) (*Lesson, error) {
	if id <= 0 {
		return nil, fmt.Errorf("lesson id must be positive")
	}
	payload, err := c.call(ctx, http.MethodPut, fmt.Sprintf("/instructor/lessons/%d/", id), nil, input, callOptions{})
	if err != nil {
		return nil, err
	}
	c.cache.Invalidate("lessons/")

	var lesson Lesson
	if err := unmarshalLoose(payload, &lesson); err != nil {
		return nil, fmt.Errorf("failed to parse lesson response: %w", err)
	}
	return &lesson, nil
}

// DeleteLesson removes a lesson.
func (c *Client) DeleteLesson(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("lesson id must be positive")
	}
	_, err := c.call(ctx, http.MethodDelete, fmt.Sprintf("/instructor/lessons/%d/", id), nil, nil, callOptions{})
	if err != nil {
		return err
	}
	c.cache.Invalidate("lessons/")
	return nil
}
