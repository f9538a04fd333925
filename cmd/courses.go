package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/softTechSolutions2001/eduplatform-sub000/client"
	"github.com/softTechSolutions2001/eduplatform-sub000/db"
	"github.com/softTechSolutions2001/eduplatform-sub000/pkg/validation"
	"github.com/spf13/cobra"
)

// coursesCmd represents the course catalogue command group
func coursesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Browse, sync, and search the course catalogue",
	}

	// Add subcommands to the courses command
	cmd.AddCommand(
		browseCmd(),
		showCmd(),
		syncCmd(),
		listCmd(),
		searchCmd(),
		exportCmd(),
	)

	return cmd
}

// browseCmd lists published courses straight from the platform
func browseCmd() *cobra.Command {
	var category string
	var search string
	var page int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse published courses on the platform",
		Run: func(cmd *cobra.Command, args []string) {
			browseCourses(cmd, category, search, page)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only show courses in this category slug")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search term to filter courses by")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Result page to show")

	return cmd
}

func browseCourses(cmd *cobra.Command, category, search string, page int) {
	if err := validation.ValidatePage(page); err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	api, err := buildClient(cmd, "")
	if err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	coursePage, err := api.ListCourses(cmd.Context(), client.ListCoursesParams{
		Category: category,
		Search:   search,
		Page:     page,
	})
	if err != nil {
		printClientError(cmd, err)
		return
	}

	if len(coursePage.Results) == 0 {
		cmd.Println("No courses found matching the criteria.")
		return
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "Slug", "Title", "Category", "Price", "Rating", "Students"})

	// Table appearance settings
	table.SetColMinWidth(2, 40)                      // Set minimum width for the Title column
	table.SetAlignment(tablewriter.ALIGN_LEFT)       // Align all columns to the left
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT) // Align headers to the left
	table.SetAutoWrapText(false)                     // Disable text wrapping in all columns
	table.SetRowLine(false)                          // Disable row line breaks

	for _, course := range coursePage.Results {
		table.Append([]string{
			fmt.Sprintf("%d", course.ID),
			course.Slug,
			strings.ReplaceAll(course.Title, "\n", " "),
			course.Category,
			fmt.Sprintf("%.2f", course.Price),
			fmt.Sprintf("%.1f", course.Rating),
			fmt.Sprintf("%d", course.StudentCount),
		})
	}

	table.Render()

	cmd.Printf("Showing %d of %d courses (page %d).\n", len(coursePage.Results), coursePage.Count, page)
}

// showCmd shows a course's details and its lesson plan
func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [courseSlug]",
		Short: "Show details and lessons for a course",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			showCourse(cmd, args[0])
		},
	}
}

func showCourse(cmd *cobra.Command, slug string) {
	if err := validation.ValidateSlug(slug); err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	api, err := buildClient(cmd, "")
	if err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	course, err := api.GetCourse(cmd.Context(), slug)
	if err != nil {
		printClientError(cmd, err)
		return
	}

	cmd.Println("Course Information:")
	cmd.Printf("ID: %d\n", course.ID)
	cmd.Printf("Title: %s\n", course.Title)
	cmd.Printf("Category: %s\n", course.Category)
	cmd.Printf("Instructor: %s\n", course.Instructor)
	cmd.Printf("Price: %.2f\n", course.Price)
	cmd.Printf("Rating: %.1f (%d students)\n", course.Rating, course.StudentCount)
	if course.Description != "" {
		cmd.Printf("Description: %s\n", course.Description)
	}
	if len(course.Requirements) > 0 {
		cmd.Printf("Requirements: %s\n", strings.Join(course.Requirements, ", "))
	}

	lessons, err := api.ListLessons(cmd.Context(), slug)
	if err != nil {
		printClientError(cmd, err)
		return
	}
	if len(lessons) == 0 {
		return
	}

	cmd.Printf("\nLessons (%d):\n", len(lessons))
	renderLessonTable(cmd, lessons)
}

// syncCmd mirrors the published catalogue into the local database
func syncCmd() *cobra.Command {

	// Number of workers to use for fetching course data
	var numWorkers int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Update the local catalogue with the latest published courses",
		Run: func(cmd *cobra.Command, args []string) {
			syncCatalogue(cmd, numWorkers)
		},
	}

	cmd.Flags().IntVarP(&numWorkers, "workers", "w", 5, "Number of workers to use for fetching course data [1-20]")
	return cmd
}

func syncCatalogue(cmd *cobra.Command, numWorkers int) {
	log.Info().Msg("Syncing the course catalogue...")

	if err := validation.ValidateWorkerCount(numWorkers); err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	api, err := buildClient(cmd, "")
	if err != nil {
		cmd.PrintErrln("Error:", err)
		return
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("Syncing catalogue..."),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	err = api.SyncCatalogue(cmd.Context(), numWorkers, func(fraction float64) {
		_ = bar.Set(int(fraction * 100))
	})
	_ = bar.Finish()
	if err != nil {
		printClientError(cmd, err)
		return
	}

	courses, err := db.GetCatalogue()
	if err != nil {
		log.Error().Err(err).Msg("Failed to count synced courses.")
		cmd.Println("Sync completed.")
		return
	}
	cmd.Printf("Sync completed successfully. There are %d courses in the local catalogue.\n", len(courses))
}

// listCmd shows the courses in the local catalogue
func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all courses in the local catalogue",
		Run:   listCourses,
	}
}

func listCourses(cmd *cobra.Command, args []string) {
	log.Info().Msg("Listing all courses in the catalogue...")

	// Fetch the courses in the local catalogue
	courses, err := db.GetCatalogue()
	if err != nil {
		cmd.PrintErrln("Error: Unable to list courses. Please check the logs for details.")
		log.Error().Err(err).Msg("Failed to fetch courses from the local catalogue.")
		return
	}

	// Check if there are any courses to display
	if len(courses) == 0 {
		cmd.Println("No courses found in the catalogue. Use `educli courses sync` to update the catalogue.")
		return
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Row ID", "Course ID", "Slug", "Course Title"})

	// Table appearance settings
	table.SetColMinWidth(3, 60)                      // Set minimum width for the Title column
	table.SetAlignment(tablewriter.ALIGN_LEFT)       // Align all columns to the left
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT) // Align headers to the left
	table.SetAutoWrapText(false)                     // Disable text wrapping in all columns
	table.SetRowLine(false)                          // Disable row line breaks

	// Populate the table with course data
	for i, course := range courses {
		// Clean the title to remove line breaks or unnecessary spaces
		cleanedTitle := strings.ReplaceAll(course.Title, "\n", " ")
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", course.ID),
			course.Slug,
			cleanedTitle,
		})
	}

	table.Render()

	log.Info().Msgf("Successfully listed %d courses from the catalogue.", len(courses))
}

// searchCmd searches the local catalogue by title term or course ID
func searchCmd() *cobra.Command {
	var courseID int
	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search the local catalogue by title or course ID",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			term := ""
			if len(args) > 0 {
				term = args[0]
			}
			searchCourses(cmd, courseID, term)
		},
	}

	cmd.Flags().IntVarP(&courseID, "id", "i", 0, "ID of the course to look up instead of a title term")
	return cmd
}

func searchCourses(cmd *cobra.Command, courseID int, term string) {
	if courseID == 0 && term == "" {
		cmd.PrintErrln("Error: a search term or the --id flag is required. Use `educli courses search -h` for more information.")
		return
	}

	// Check not both are provided
	if courseID != 0 && term != "" {
		cmd.PrintErrln("Error: use either a search term or the --id flag, not both. Use `educli courses search -h` for more information.")
		return
	}

	var courses []db.CourseRecord
	var err error

	// Search by course ID
	if courseID != 0 {
		log.Info().Msgf("Searching for course with ID=%d", courseID)
		course, err := db.GetCourseByID(courseID)
		if err != nil {
			log.Error().Err(err).Msgf("Failed to fetch course with ID=%d", courseID)
			cmd.PrintErrln("Error:", err)
			return
		}
		if course != nil {
			courses = append(courses, *course)
		}
	}

	// Search by title term
	if term != "" {
		log.Info().Msgf("Searching for courses with term=%s in the title", term)
		courses, err = db.SearchCoursesByTitle(term)
		if err != nil {
			log.Error().Err(err).Msgf("Failed to search courses with term=%s in the title", term)
			cmd.PrintErrln("Error:", err)
			return
		}
	}

	// Check if any courses were found
	if len(courses) == 0 {
		cmd.Printf("No course(s) found matching the search criteria.\n")
		return
	}

	// Display the search results in a table format
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Row ID", "Course ID", "Slug", "Title"})
	table.SetColMinWidth(3, 50)                      // Set minimum width for the Title column
	table.SetAlignment(tablewriter.ALIGN_LEFT)       // Align all columns to the left
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT) // Align headers to the left
	table.SetAutoWrapText(false)                     // Disable text wrapping in all columns
	table.SetRowLine(false)                          // Disable row line breaks

	for i, course := range courses {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", course.ID),
			course.Slug,
			course.Title,
		})
	}

	table.Render()
}

// exportCmd exports the local catalogue to a file in JSON or CSV format
func exportCmd() *cobra.Command {
	exportPath := ""
	exportFormat := ""
	fullExport := false

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the local course catalogue to a file",
		Run: func(cmd *cobra.Command, args []string) {
			exportCatalogue(cmd, exportPath, exportFormat, fullExport)
		},
	}

	// Add flags for export path and format
	cmd.Flags().StringVarP(&exportPath, "dir", "d", "", "Directory to export the file (required)")
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Export format: json or csv (required)")
	cmd.Flags().BoolVar(&fullExport, "full", false, "Include the full course payload in the export (json only)")

	// Mark flags as required
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("format")

	return cmd
}

func exportCatalogue(cmd *cobra.Command, exportPath, exportFormat string, fullExport bool) {
	log.Info().Msg("Exporting the course catalogue...")

	// Validate the export path
	if exportPath == "" {
		log.Error().Msg("Export directory is required.")
		cmd.PrintErrln("Error: Export directory is required.")
		return
	}

	// Validate the export format
	if err := validation.ValidateExportFormat(exportFormat); err != nil {
		log.Error().Err(err).Msg("Invalid export format.")
		cmd.PrintErrln("Error:", err)
		return
	}
	if fullExport && exportFormat != "json" {
		cmd.PrintErrln("Error: The --full flag is only supported for the json format.")
		return
	}

	// Ensure the directory exists or create it
	if err := os.MkdirAll(exportPath, 0o750); err != nil {
		log.Error().Err(err).Msg("Failed to create export directory.")
		cmd.PrintErrln("Error: Failed to create export directory.")
		return
	}

	// Generate a timestamped filename
	timestamp := time.Now().Format("20060102_150405")
	var fileName string
	switch {
	case fullExport:
		fileName = fmt.Sprintf("educli_full_catalogue_%s.json", timestamp)
	case exportFormat == "json":
		fileName = fmt.Sprintf("educli_catalogue_%s.json", timestamp)
	default:
		fileName = fmt.Sprintf("educli_catalogue_%s.csv", timestamp)
	}

	filePath := filepath.Join(exportPath, fileName)

	// Export the catalogue based on the format
	var err error
	if exportFormat == "json" {
		err = exportCatalogueToJSON(filePath, fullExport)
	} else {
		err = exportCatalogueToCSV(filePath)
	}

	// Check for any errors during export
	if err != nil {
		log.Error().Err(err).Msg("Failed to export the course catalogue.")
		cmd.PrintErrln("Error: Failed to export the course catalogue.")
		return
	}

	cmd.Printf("Catalogue exported to %s\n", filePath)
	log.Info().Msgf("Course catalogue exported successfully to %s.", filePath)
}

// exportCatalogueToCSV exports the course catalogue to a CSV file.
func exportCatalogueToCSV(path string) error {

	// Fetch all courses from the catalogue
	courses, err := db.GetCatalogue()
	if err != nil {
		return err
	}

	// writeCoursesToCSV writes the courses to a CSV file.
	writeCoursesToCSV := func(path string, courses []db.CourseRecord) error {
		file, err := os.Create(path)
		if err != nil {
			log.Error().Err(err).Msgf("Failed to create CSV file %s", path)
			return err
		}
		defer file.Close()

		// Write the header
		if _, err := file.WriteString("ID,Slug,Title\n"); err != nil {
			log.Error().Err(err).Msg("Failed to write CSV header to file")
			return err
		}

		// Write the courses
		for _, course := range courses {
			if _, err := file.WriteString(fmt.Sprintf("%d,%s,\"%s\"\n", course.ID, course.Slug, course.Title)); err != nil {
				log.Error().Err(err).Msgf("Failed to write course %d to CSV file", course.ID)
				return err
			}
		}

		log.Info().Msgf("Course catalogue exported to CSV file: %s", path)
		return nil
	}

	// Write the course catalogue to a CSV file
	return writeCoursesToCSV(path, courses)
}

// exportCatalogueToJSON exports the course catalogue to a JSON file. With
// full set, each entry embeds the complete stored course payload.
func exportCatalogueToJSON(path string, full bool) error {

	// Fetch all courses from the catalogue
	courses, err := db.GetCatalogue()
	if err != nil {
		return err
	}

	type exportEntry struct {
		ID    int             `json:"id"`
		Slug  string          `json:"slug"`
		Title string          `json:"title"`
		Data  json.RawMessage `json:"data,omitempty"`
	}

	entries := make([]exportEntry, 0, len(courses))
	for _, course := range courses {
		entry := exportEntry{ID: course.ID, Slug: course.Slug, Title: course.Title}
		if full && course.Data != "" {
			entry.Data = json.RawMessage(course.Data)
		}
		entries = append(entries, entry)
	}

	file, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Msgf("Failed to create JSON file %s", path)
		return err
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(entries); err != nil {
		log.Error().Err(err).Msg("Failed to write courses to JSON file")
		return err
	}

	log.Info().Msgf("Course catalogue exported to JSON file: %s", path)
	return nil
}
