package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/softTechSolutions2001/eduplatform-sub000/client"
	"github.com/softTechSolutions2001/eduplatform-sub000/pkg/validation"
	"github.com/spf13/cobra"
)

// lessonsCmd represents the lessons command group
func lessonsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "Inspect the lessons of a course",
	}

	cmd.AddCommand(
		lessonsListCmd(),
		lessonsShowCmd(),
	)

	return cmd
}

// lessonsListCmd lists the lessons of a course in position order
func lessonsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [courseSlug]",
		Short: "List the lessons of a course in order",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			slug := args[0]
			if err := validation.ValidateSlug(slug); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			lessons, err := api.ListLessons(cmd.Context(), slug)
			if err != nil {
				printClientError(cmd, err)
				return
			}
			if len(lessons) == 0 {
				cmd.Println("No lessons found for this course.")
				return
			}
			renderLessonTable(cmd, lessons)
		},
	}
}

// lessonsShowCmd shows the details of a single lesson
func lessonsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [lessonID]",
		Short: "Show details of a single lesson",
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

			lesson, err := api.GetLesson(cmd.Context(), id)
			if err != nil {
				printClientError(cmd, err)
				return
			}

			cmd.Println("Lesson Information:")
			cmd.Printf("ID: %d\n", lesson.ID)
			cmd.Printf("Course ID: %d\n", lesson.CourseID)
			cmd.Printf("Title: %s\n", lesson.Title)
			cmd.Printf("Position: %d\n", lesson.Position)
			if lesson.Duration > 0 {
				cmd.Printf("Duration: %s\n", formatDuration(lesson.Duration))
			}
			if lesson.VideoUrl != "" {
				cmd.Printf("Video: %s\n", lesson.VideoUrl)
			}
			if lesson.Content != "" {
				cmd.Printf("Content: %s\n", lesson.Content)
			}
			if lesson.Preview {
				cmd.Println("Free preview: yes")
			}
		},
	}
}

// renderLessonTable prints lessons as a table, marking free previews.
func renderLessonTable(cmd *cobra.Command, lessons []client.Lesson) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Position", "ID", "Title", "Duration", "Preview"})
	table.SetColMinWidth(2, 40)                      // Set minimum width for the Title column
	table.SetAlignment(tablewriter.ALIGN_LEFT)       // Align all columns to the left
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT) // Align headers to the left
	table.SetAutoWrapText(false)                     // Disable text wrapping in all columns
	table.SetRowLine(false)                          // Disable row line breaks

	for _, lesson := range lessons {
		preview := ""
		if lesson.Preview {
			preview = "yes"
		}
		table.Append([]string{
			fmt.Sprintf("%d", lesson.Position),
			fmt.Sprintf("%d", lesson.ID),
			strings.ReplaceAll(lesson.Title, "\n", " "),
			formatDuration(lesson.Duration),
			preview,
		})
	}

	table.Render()
}

// formatDuration renders a lesson length in seconds as m:ss or h:mm:ss.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
