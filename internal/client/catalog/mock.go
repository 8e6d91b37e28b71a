package catalog

import (
	"strings"

	"github.com/inclick-mx/inclick-cli/internal/client/models"
)

// Built-in catalog served when no Nexus endpoint is configured.
var mockCourses = []models.Course{
	{
		ID:               "course-frontend-foundations",
		Title:            "Frontend moderno con React 19",
		CoverURL:         "https://images.unsplash.com/photo-1523475472560-d2df97ec485c",
		Category:         "Frontend",
		Level:            models.LevelBeginner,
		Lessons:          24,
		DurationMinutes:  720,
		Rating:           4.8,
		Tags:             []string{"React", "TypeScript", "UI"},
		ShortDescription: "Aprende a crear interfaces accesibles y fluidas con React 19, TypeScript y NativeWind.",
	},
	{
		ID:               "course-ai-product",
		Title:            "IA aplicada para product managers",
		CoverURL:         "https://images.unsplash.com/photo-1504384308090-c894fdcc538d",
		Category:         "Product Management",
		Level:            models.LevelIntermediate,
		Lessons:          16,
		DurationMinutes:  540,
		Rating:           4.6,
		Tags:             []string{"AI", "Product Strategy"},
		ShortDescription: "Descubre cómo integrar modelos generativos en tu roadmap con foco de negocio.",
	},
	{
		ID:               "course-data-storytelling",
		Title:            "Storytelling con datos",
		CoverURL:         "https://images.unsplash.com/photo-1551288049-bebda4e38f71",
		Category:         "Datos",
		Level:            models.LevelAdvanced,
		Lessons:          18,
		DurationMinutes:  480,
		Rating:           4.9,
		Tags:             []string{"Data Viz", "UX Research"},
		ShortDescription: "Comunica insights complejos con claridad usando dashboards e historias inmersivas.",
	},
}

var mockPath = models.PathProgress{
	UserID:        "mock-user",
	CompletionPct: 42,
	Nodes: []models.PathNode{
		{ID: "node-1", CourseID: "course-frontend-foundations", Status: models.PathNodeInProgress},
		{ID: "node-2", CourseID: "course-ai-product", Status: models.PathNodeLocked},
		{ID: "node-3", CourseID: "course-data-storytelling", Status: models.PathNodeLocked},
	},
}

// filterMockCourses matches query against title and tags, and category
// exactly, both case-insensitive.
func filterMockCourses(params ListParams) []models.Course {
	q := strings.ToLower(strings.TrimSpace(params.Query))
	category := strings.ToLower(strings.TrimSpace(params.Category))

	out := make([]models.Course, 0, len(mockCourses))
	for _, course := range mockCourses {
		if q != "" && !matchesQuery(course, q) {
			continue
		}
		if category != "" && strings.ToLower(course.Category) != category {
			continue
		}
		out = append(out, course)
	}
	return out
}

func matchesQuery(course models.Course, q string) bool {
	if strings.Contains(strings.ToLower(course.Title), q) {
		return true
	}
	for _, tag := range course.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
