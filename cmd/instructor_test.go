package cmd

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructorCoursesCmd_RendersTable(t *testing.T) {
	cleanDBTables(t)
	seedTestCredential(t, "instructor-token")
	newWireServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/instructor/courses/", r.URL.Path)
		require.Equal(t, "Bearer instructor-token", r.Header.Get("Authorization"))
		writeWireJSON(t, w, http.StatusOK, []map[string]any{
			{"id": 9, "slug": "draft-course", "title": "Draft Course", "lesson_count": 0, "student_count": 0},
			{"id": 10, "slug": "live-course", "title": "Live Course", "lesson_count": 12, "student_count": 250},
		})
	})

	coursesCommand := instructorCoursesCmd()
	output, err := captureCombinedOutput(coursesCommand)
	require.NoError(t, err)
	assert.Contains(t, output, "Draft Course")
	assert.Contains(t, output, "Live Course")
	assert.Contains(t, output, "250")
}

func TestCreateCourseCmd_RequiresTitle(t *testing.T) {
	createCommand := createCourseCmd()
	_, err := captureCombinedOutput(createCommand)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
}

func TestCreateCourseCmd_SendsInputAndPrintsResult(t *testing.T) {
	cleanDBTables(t)
	seedTestCredential(t, "instructor-token")
	newWireServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/instructor/courses/", r.URL.Path)
		writeWireJSON(t, w, http.StatusCreated, map[string]any{
			"id": 31, "slug": "intro-to-testing", "title": "Intro to Testing",
		})
	})

	createCommand := createCourseCmd()
	output, err := captureCombinedOutput(createCommand,
		"--title", "Intro to Testing", "--category", "programming", "--price", "9.99")
	require.NoError(t, err)
	assert.Contains(t, output, `Created course "Intro to Testing" with ID 31`)
}

func TestUpdateCourseCmd_RejectsBadID(t *testing.T) {
	updateCommand := updateCourseCmd()
	output, err := captureCombinedOutput(updateCommand, "abc", "--title", "T")
	require.NoError(t, err)
	assert.Contains(t, output, "Invalid course ID")
}

func TestDeleteCourseCmd_Succeeds(t *testing.T) {
	cleanDBTables(t)
	seedTestCredential(t, "instructor-token")
	newWireServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/instructor/courses/31/", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	deleteCommand := deleteCourseCmd()
	output, err := captureCombinedOutput(deleteCommand, "31")
	require.NoError(t, err)
	assert.Contains(t, output, "Deleted course 31.")
}

func TestCreateLessonCmd_SendsCourseID(t *testing.T) {
	cleanDBTables(t)
	seedTestCredential(t, "instructor-token")
	newWireServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/instructor/lessons/", r.URL.Path)
		writeWireJSON(t, w, http.StatusCreated, map[string]any{
			"id": 77, "course_id": 31, "title": "Setup", "position": 1,
		})
	})

	createCommand := createLessonCmd()
	output, err := captureCombinedOutput(createCommand, "31", "--title", "Setup", "--position", "1")
	require.NoError(t, err)
	assert.Contains(t, output, `Created lesson "Setup" with ID 77 at position 1.`)
}

func TestUploadCmd_StreamsFileAndPrintsSummary(t *testing.T) {
	cleanDBTables(t)
	seedTestCredential(t, "instructor-token")

	payload := []byte("slides-content")
	assetPath := filepath.Join(t.TempDir(), "slides.pdf")
	require.NoError(t, os.WriteFile(assetPath, payload, 0o600))

	newWireServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/instructor/courses/9/assets/", r.URL.Path)
		mr, err := r.MultipartReader()
		require.NoError(t, err)
		part, err := mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "slides.pdf", part.FileName())
		buf := make([]byte, 64)
		total := 0
		for {
			n, rerr := part.Read(buf)
			total += n
			if rerr != nil {
				break
			}
		}
		assert.Equal(t, len(payload), total)
		writeWireJSON(t, w, http.StatusCreated, map[string]any{
			"id": 3, "course_id": 9, "file_name": "slides.pdf", "size": len(payload),
			"url": "https://cdn.example.com/slides.pdf",
		})
	})

	uploadCommand := uploadCmd()
	output, err := captureCombinedOutput(uploadCommand, "9", assetPath)
	require.NoError(t, err)
	assert.Contains(t, output, "Uploaded slides.pdf (14 B) to course 9.")
}

func TestUploadCmd_MissingFile(t *testing.T) {
	uploadCommand := uploadCmd()
	output, err := captureCombinedOutput(uploadCommand, "9", filepath.Join(t.TempDir(), "nope.bin"))
	require.NoError(t, err)
	assert.Contains(t, output, "Failed to open file")
}

func TestUploadCmd_RejectsBadCourseID(t *testing.T) {
	uploadCommand := uploadCmd()
	output, err := captureCombinedOutput(uploadCommand, "0", "whatever.bin")
	require.NoError(t, err)
	assert.Contains(t, output, "course ID must be a positive integer")
}
