package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/inclick-mx/inclick-cli/internal/client/catalog"
)

// Courses lists the catalog. Optional args filter: the first is a free-text
// query, the second a category.
func (a *App) Courses(ctx context.Context, args []string) error {
	params := catalog.ListParams{}
	if len(args) > 0 {
		params.Query = args[0]
	}
	if len(args) > 1 {
		params.Category = strings.Join(args[1:], " ")
	}

	courses, err := a.catalog.ListCourses(ctx, params)
	if err != nil {
		fmt.Println("No pudimos cargar el catálogo:", err.Error())
		return err
	}
	if len(courses) == 0 {
		fmt.Println("Sin resultados.")
		return nil
	}

	for _, course := range courses {
		fmt.Printf("%-32s %-20s %s (%d lecciones, %d min)\n",
			course.ID, course.Category, course.Title, course.Lessons, course.DurationMinutes)
	}
	return nil
}

// Course shows one course in detail.
func (a *App) Course(ctx context.Context, id string) error {
	course, err := a.catalog.GetCourse(ctx, id)
	if err != nil {
		fmt.Println("Curso no encontrado.")
		return err
	}

	fmt.Printf("%s\n", course.Title)
	fmt.Printf("  Categoría: %s | Nivel: %s | Rating: %.1f\n", course.Category, course.Level, course.Rating)
	fmt.Printf("  %d lecciones, %d minutos\n", course.Lessons, course.DurationMinutes)
	if len(course.Tags) > 0 {
		fmt.Printf("  Tags: %s\n", strings.Join(course.Tags, ", "))
	}
	if course.ShortDescription != "" {
		fmt.Printf("  %s\n", course.ShortDescription)
	}
	return nil
}

// Path prints the learning path of the signed-in user.
func (a *App) Path(ctx context.Context) error {
	state := a.authStore.State()
	if state.Session == nil {
		fmt.Println("Inicia sesión primero.")
		return nil
	}

	path, err := a.catalog.GetUserPath(ctx, state.Session.User.ID)
	if err != nil {
		fmt.Println("No pudimos cargar tu trayecto:", err.Error())
		return err
	}

	fmt.Printf("Progreso: %.0f%%\n", path.CompletionPct)
	for _, node := range path.Nodes {
		fmt.Printf("  [%-11s] %s\n", node.Status, node.CourseID)
	}
	return nil
}

// SetAPIKey stores the Nexus API key in the secure store.
func (a *App) SetAPIKey(ctx context.Context) error {
	key, err := getSimpleText(a.reader, "Nexus API key", os.Stdout)
	if err != nil {
		return err
	}
	if err := a.catalog.SetAPIKey(ctx, key); err != nil {
		fmt.Println("No pudimos guardar la llave:", err.Error())
		return err
	}
	fmt.Println("Llave guardada.")
	return nil
}
