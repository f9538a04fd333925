package cmd

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/softTechSolutions2001/eduplatform-sub000/pkg/validation"
	"github.com/spf13/cobra"
)

// meCmd shows the profile of the logged-in account.
func meCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the profile of the logged-in account",
		Run: func(cmd *cobra.Command, args []string) {
			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			profile, err := api.Me(cmd.Context())
			if err != nil {
				printClientError(cmd, err)
				return
			}

			cmd.Println("Account Information:")
			cmd.Printf("ID: %d\n", profile.ID)
			cmd.Printf("Email: %s\n", profile.Email)
			cmd.Printf("Name: %s\n", profile.FullName)
			cmd.Printf("Role: %s\n", profile.Role)
			if profile.Bio != "" {
				cmd.Printf("Bio: %s\n", profile.Bio)
			}
		},
	}
}

// enrollmentsCmd lists the courses the account has joined.
func enrollmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enrollments",
		Short: "List the courses you are enrolled in",
		Run: func(cmd *cobra.Command, args []string) {
			api, err := buildClient(cmd, "")
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			enrollments, err := api.Enrollments(cmd.Context())
			if err != nil {
				printClientError(cmd, err)
				return
			}

			if len(enrollments) == 0 {
				cmd.Println("You are not enrolled in any courses yet. Use `educli enroll <courseSlug>` to join one.")
				return
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Row ID", "Course", "Title", "Enrolled At", "Progress"})
			table.SetColMinWidth(2, 40)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			table.SetRowLine(false)

			for i, enrollment := range enrollments {
				table.Append([]string{
					fmt.Sprintf("%d", i+1),
					enrollment.CourseSlug,
					strings.ReplaceAll(enrollment.CourseTitle, "\n", " "),
					enrollment.EnrolledAt,
					fmt.Sprintf("%.0f%%", enrollment.Progress*100),
				})
			}

			table.Render()
		},
	}
}

// enrollCmd joins the account to a course.
func enrollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enroll [courseSlug]",
		Short: "Enroll in a course",
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

			enrollment, err := api.EnrollInCourse(cmd.Context(), slug)
			if err != nil {
				printClientError(cmd, err)
				return
			}
			cmd.Printf("Enrolled in %q.\n", enrollment.CourseTitle)
		},
	}
}
