package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/softTechSolutions2001/eduplatform-sub000/client"
	"github.com/softTechSolutions2001/eduplatform-sub000/pkg/validation"
	"github.com/spf13/cobra"
)

// instructorCmd represents the instructor command group
func instructorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instructor",
		Short: "Manage the courses and lessons you teach",
	}

	cmd.AddCommand(
		instructorCoursesCmd(),
		createCourseCmd(),
		updateCourseCmd(),
		deleteCourseCmd(),
		createLessonCmd(),
		updateLessonCmd(),
		deleteLessonCmd(),
		uploadCmd(),
	)

	return cmd
}

// instructorCoursesCmd lists the courses owned by the instructor
func instructorCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List your courses, including unpublished ones",
		Run: func(cmd *cobra.Command, args []string) {
			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			courses, err := api.InstructorCourses(cmd.Context())
			if err != nil {
				printClientError(cmd, err)
				return
			}
			if len(courses) == 0 {
				cmd.Println("You have no courses yet. Use `educli instructor create-course` to add one.")
				return
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"ID", "Slug", "Title", "Lessons", "Students"})
			table.SetColMinWidth(2, 40)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			table.SetRowLine(false)

			for _, course := range courses {
				table.Append([]string{
					fmt.Sprintf("%d", course.ID),
					course.Slug,
					strings.ReplaceAll(course.Title, "\n", " "),
					fmt.Sprintf("%d", course.LessonCount),
					fmt.Sprintf("%d", course.StudentCount),
				})
			}

			table.Render()
		},
	}
}

// courseInputFlags registers the shared create/update course flags.
func courseInputFlags(cmd *cobra.Command, input *client.CourseInput) {
	cmd.Flags().StringVarP(&input.Title, "title", "t", "", "Course title (required)")
	cmd.Flags().StringVar(&input.Slug, "slug", "", "URL slug for the course; generated by the platform when empty")
	cmd.Flags().StringVarP(&input.Category, "category", "c", "", "Category slug the course belongs to")
	cmd.Flags().StringVar(&input.Description, "description", "", "Course description")
	cmd.Flags().Float64VarP(&input.Price, "price", "p", 0, "Course price; 0 means free")
}

// createCourseCmd creates a new course owned by the instructor
func createCourseCmd() *cobra.Command {
	var input client.CourseInput

	cmd := &cobra.Command{
		Use:   "create-course",
		Short: "Create a new course",
		Run: func(cmd *cobra.Command, args []string) {
			if err := validation.ValidateNonEmptyString("title", input.Title); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if input.Slug != "" {
				if err := validation.ValidateSlug(input.Slug); err != nil {
					cmd.PrintErrln("Error:", err)
					return
				}
			}

			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			course, err := api.CreateCourse(cmd.Context(), input)
			if err != nil {
				printClientError(cmd, err)
				return
			}
			cmd.Printf("Created course %q with ID %d (slug %s).\n", course.Title, course.ID, course.Slug)
		},
	}

	courseInputFlags(cmd, &input)
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// updateCourseCmd replaces the editable fields of a course
func updateCourseCmd() *cobra.Command {
	var input client.CourseInput

	cmd := &cobra.Command{
		Use:   "update-course [courseID]",
		Short: "Update one of your courses",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				cmd.PrintErrln("Error: Invalid course ID. It must be a positive integer.")
				return
			}
			if err := validation.ValidateCourseID(id); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := validation.ValidateNonEmptyString("title", input.Title); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			course, err := api.UpdateCourse(cmd.Context(), id, input)
			if err != nil {
				printClientError(cmd, err)
				return
			}
			cmd.Printf("Updated course %d (%q).\n", course.ID, course.Title)
		},
	}

	courseInputFlags(cmd, &input)
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// deleteCourseCmd removes a course and everything under it
func deleteCourseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-course [courseID]",
		Short: "Delete one of your courses and all of its lessons",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				cmd.PrintErrln("Error: Invalid course ID. It must be a positive integer.")
				return
			}
			if err := validation.ValidateCourseID(id); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			if err := api.DeleteCourse(cmd.Context(), id); err != nil {
				printClientError(cmd, err)
				return
			}
			cmd.Printf("Deleted course %d.\n", id)
		},
	}
}

// lessonInputFlags registers the shared create/update lesson flags.
func lessonInputFlags(cmd *cobra.Command, input *client.LessonInput) {
	cmd.Flags().StringVarP(&input.Title, "title", "t", "", "Lesson title (required)")
	cmd.Flags().IntVar(&input.Position, "position", 0, "Position of the lesson within the course")
	cmd.Flags().IntVar(&input.Duration, "duration", 0, "Lesson length in seconds")
	cmd.Flags().StringVar(&input.VideoUrl, "video-url", "", "URL of the lesson video")
	cmd.Flags().StringVar(&input.Content, "content", "", "Lesson body text")
	cmd.Flags().BoolVar(&input.Preview, "preview", false, "Make the lesson a free preview")
}

// createLessonCmd adds a lesson to one of the instructor's courses
func createLessonCmd() *cobra.Command {
	var input client.LessonInput

	cmd := &cobra.Command{
		Use:   "create-lesson [courseID]",
		Short: "Add a lesson to one of your courses",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			courseID, err := strconv.Atoi(args[0])
			if err != nil {
				cmd.PrintErrln("Error: Invalid course ID. It must be a positive integer.")
				return
			}
			if err := validation.ValidateCourseID(courseID); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := validation.ValidateNonEmptyString("title", input.Title); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			input.CourseID = courseID

			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			lesson, err := api.CreateLesson(cmd.Context(), input)
			if err != nil {
				printClientError(cmd, err)
				return
			}
			cmd.Printf("Created lesson %q with ID %d at position %d.\n", lesson.Title, lesson.ID, lesson.Position)
		},
	}

	lessonInputFlags(cmd, &input)
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// updateLessonCmd replaces the editable fields of a lesson
func updateLessonCmd() *cobra.Command {
	var input client.LessonInput

	cmd := &cobra.Command{
		Use:   "update-lesson [lessonID]",
		Short: "Update a lesson in one of your courses",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				cmd.PrintErrln("Error: Invalid lesson ID. It must be a positive integer.")
				return
			}
			if err := validation.ValidateLessonID(id); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := validation.ValidateNonEmptyString("title", input.Title); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			lesson, err := api.UpdateLesson(cmd.Context(), id, input)
			if err != nil {
				printClientError(cmd, err)
				return
			}
			cmd.Printf("Updated lesson %d (%q).\n", lesson.ID, lesson.Title)
		},
	}

	lessonInputFlags(cmd, &input)
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// deleteLessonCmd removes a lesson
func deleteLessonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-lesson [lessonID]",
		Short: "Delete a lesson from one of your courses",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				cmd.PrintErrln("Error: Invalid lesson ID. It must be a positive integer.")
				return
			}
			if err := validation.ValidateLessonID(id); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			if err := api.DeleteLesson(cmd.Context(), id); err != nil {
				printClientError(cmd, err)
				return
			}
			cmd.Printf("Deleted lesson %d.\n", id)
		},
	}
}

// uploadCmd streams an asset file to one of the instructor's courses
func uploadCmd() *cobra.Command {
	var rateLimitKiB int64

	cmd := &cobra.Command{
		Use:   "upload [courseID] [filePath]",
		Short: "Upload an asset file to one of your courses",
		Long:  "Upload an asset file (video, slides, archive) to one of your courses, streaming it with a progress bar",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			courseID, err := strconv.Atoi(args[0])
			if err != nil {
				cmd.PrintErrln("Error: Invalid course ID. It must be a positive integer.")
				return
			}
			uploadAsset(cmd, courseID, args[1], rateLimitKiB)
		},
	}

	cmd.Flags().Int64VarP(&rateLimitKiB, "rate-limit", "r", 0, "Upload bandwidth cap in KiB/s (0 means unlimited)")

	return cmd
}

func uploadAsset(cmd *cobra.Command, courseID int, filePath string, rateLimitKiB int64) {
	if err := validation.ValidateCourseID(courseID); err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	file, err := os.Open(filePath)
	if err != nil {
		log.Error().Err(err).Str("path", filePath).Msg("Failed to open asset file.")
		cmd.PrintErrln("Error: Failed to open file:", err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		cmd.PrintErrln("Error: Failed to stat file:", err)
		return
	}
	if info.IsDir() {
		cmd.PrintErrln("Error: The path points to a directory, not a file.")
		return
	}

	api, err := buildClient(cmd, "")
	if err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	if rateLimitKiB > 0 {
		client.SetUploadRateLimit(rateLimitKiB * 1024)
		defer client.SetUploadRateLimit(0)
	}

	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetDescription("Uploading "+filepath.Base(filePath)+"..."),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(20),
		progressbar.OptionClearOnFinish(),
	)

	// The producer never blocks on this channel; a lagging bar just drops
	// events. The done signal stops the consumer after the upload returns,
	// so the channel itself is never closed.
	events := make(chan client.UploadProgress, 64)
	uploadDone := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case ev := <-events:
				_ = bar.Set64(ev.Sent)
			case <-uploadDone:
				return
			}
		}
	}()

	result, err := api.UploadCourseAsset(cmd.Context(), courseID, filepath.Base(filePath), file, info.Size(), events)
	close(uploadDone)
	<-drained
	_ = bar.Finish()

	if err != nil {
		printClientError(cmd, err)
		return
	}

	cmd.Printf("Uploaded %s (%s) to course %d.\n", result.FileName, formatBytes(result.Size), result.CourseID)
}

// formatBytes renders a byte count in a human-readable binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
