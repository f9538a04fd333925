package client

// Record types for the platform API. Every JSON tag is camelCase; the
// pipeline translates to and from the wire's snake_case at the transport
// boundary, so these tags round-trip unchanged through a call.

// Credentials is the token bundle issued by login and refresh.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// UserProfile describes the authenticated account.
type UserProfile struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	Bio       string `json:"bio,omitempty"`
	AvatarUrl string `json:"avatarUrl,omitempty"`
}

// ProfileInput carries the editable profile fields for a PATCH.
type ProfileInput struct {
	FullName  string `json:"fullName,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarUrl string `json:"avatarUrl,omitempty"`
}

// Category is a course category.
type Category struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	CourseCount int    `json:"courseCount"`
}

// CourseSummary is the listing form of a course.
type CourseSummary struct {
	ID           int     `json:"id"`
	Slug         string  `json:"slug"`
	Title        string  `json:"title"`
	Category     string  `json:"category"`
	Instructor   string  `json:"instructor"`
	Price        float64 `json:"price"`
	Rating       float64 `json:"rating"`
	StudentCount int     `json:"studentCount"`
}

// Course is the full course record.
type Course struct {
	CourseSummary
	Description  string   `json:"description"`
	Requirements []string `json:"requirements,omitempty"`
	LessonCount  int      `json:"lessonCount"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

// CoursePage is one page of course listings.
type CoursePage struct {
	Count    int             `json:"count"`
	Next     string          `json:"next,omitempty"`
	Previous string          `json:"previous,omitempty"`
	Results  []CourseSummary `json:"results"`
}

// CourseInput carries the fields an instructor sets on create or update.
type CourseInput struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug,omitempty"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

// Lesson is a single lesson within a course.
type Lesson struct {
	ID       int    `json:"id"`
	CourseID int    `json:"courseId"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	Duration int    `json:"duration,omitempty"`
	VideoUrl string `json:"videoUrl,omitempty"`
	Content  string `json:"content,omitempty"`
	Preview  bool   `json:"preview"`
}

// LessonInput carries the fields an instructor sets on a lesson.
type LessonInput struct {
	CourseID int    `json:"courseId"`
	Title    string `json:"title"`
	Position int    `json:"position,omitempty"`
	Duration int    `json:"duration,omitempty"`
	VideoUrl string `json:"videoUrl,omitempty"`
	Content  string `json:"content,omitempty"`
	Preview  bool   `json:"preview,omitempty"`
}

// Enrollment links the account to a course it has joined.
type Enrollment struct {
	ID          int     `json:"id"`
	CourseSlug  string  `json:"courseSlug"`
	CourseTitle string  `json:"courseTitle"`
	EnrolledAt  string  `json:"enrolledAt"`
	Progress    float64 `json:"progress"`
}

// AssetUploadResult describes a stored course asset.
type AssetUploadResult struct {
	ID       int    `json:"id"`
	CourseID int    `json:"courseId"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	Url      string `json:"url"`
}
