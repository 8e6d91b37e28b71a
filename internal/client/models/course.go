package models

// Course is a catalog entry served by the Nexus API (or the built-in mock
// data when no endpoint is configured).
type Course struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	CoverURL         string   `json:"coverUrl,omitempty"`
	Category         string   `json:"category"`
	Level            Level    `json:"level"`
	Lessons          int      `json:"lessons"`
	DurationMinutes  int      `json:"durationMinutes"`
	Rating           float64  `json:"rating,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	ShortDescription string   `json:"shortDescription,omitempty"`
}

// PathNodeStatus is the progress state of a single node in a learning path.
type PathNodeStatus string

const (
	PathNodeLocked     PathNodeStatus = "locked"
	PathNodeInProgress PathNodeStatus = "in_progress"
	PathNodeDone       PathNodeStatus = "done"
)

// PathNode links a course into a user's learning path.
type PathNode struct {
	ID       string         `json:"id"`
	CourseID string         `json:"courseId"`
	Status   PathNodeStatus `json:"status"`
}

// PathProgress is the personalized learning path with overall completion.
type PathProgress struct {
	UserID        string     `json:"userId"`
	Nodes         []PathNode `json:"nodes"`
	CompletionPct float64    `json:"completionPct"`
}
