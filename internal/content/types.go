// Package content defines the portfolio document entities: the about
// profile, the skill and project collections, goals, and the journey
// timelines. Documents are stored as whole JSON values keyed by name;
// these types give the rest of the system a typed view of them.
package content

// Status is the lifecycle state of a project.
type Status string

const (
	StatusPlanning   Status = "planning"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// StatusPriority orders statuses for sorting, most finished first.
func StatusPriority(s Status) int {
	switch s {
	case StatusCompleted:
		return 3
	case StatusInProgress:
		return 2
	case StatusPlanning:
		return 1
	default:
		return 0
	}
}

// Links holds the external URLs attached to a project.
type Links struct {
	GitHub string `json:"github,omitempty"`
	Live   string `json:"live,omitempty"`
}

// Project is one entry in the projects collection. Projects are
// identified by title; title matching is case-insensitive.
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Stack       []string `json:"stack"`
	Year        int      `json:"year"`
	Links       Links    `json:"links"`
	Featured    bool     `json:"featured"`
	Status      Status   `json:"status"`
	Lessons     []string `json:"lessons"`
}

// Skill is one entry in the skills collection, identified by name
// (case-insensitive). IconName and ColorClass are presentation hints
// consumed by the site frontend.
type Skill struct {
	Name       string `json:"name"`
	IconName   string `json:"iconName"`
	ColorClass string `json:"colorClass"`
	Category   string `json:"category"`
	Level      int    `json:"level"`
}

// SkillCategories is the closed set of skill groupings.
var SkillCategories = []string{"Frontend", "Backend", "Mobile", "AI/ML", "Databases", "Tools"}

// About is the single-record profile document.
type About struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Location string   `json:"location"`
	Bio      string   `json:"bio"`
	Email    string   `json:"email"`
	GitHub   string   `json:"github"`
	LinkedIn string   `json:"linkedin"`
	Roles    []string `json:"roles"`
}

// Goals holds short and long term goal lists plus three free-form
// narrative fields.
type Goals struct {
	ShortTerm    []string `json:"shortTerm"`
	LongTerm     []string `json:"longTerm"`
	CurrentFocus string   `json:"currentFocus"`
	Vision       string   `json:"vision"`
	Mission      string   `json:"mission"`
}

// JourneyItem is one milestone on a journey timeline. The ID is
// generated on insert and is the handle for updates and removals.
type JourneyItem struct {
	ID        string `json:"id"`
	Year      string `json:"year"`
	Title     string `json:"title"`
	Desc      string `json:"desc"`
	Icon      string `json:"icon"`
	IconColor string `json:"iconColor"`
}

// Journey holds the two milestone timelines.
type Journey struct {
	Student      []JourneyItem `json:"student"`
	Entrepreneur []JourneyItem `json:"entrepreneur"`
}

// Timeline names accepted by journey commands.
const (
	TimelineStudent      = "student"
	TimelineEntrepreneur = "entrepreneur"
)

// Timeline returns a pointer to the named timeline slice, or nil if the
// name is not a known timeline.
func (j *Journey) Timeline(name string) *[]JourneyItem {
	switch name {
	case TimelineStudent:
		return &j.Student
	case TimelineEntrepreneur:
		return &j.Entrepreneur
	default:
		return nil
	}
}

// JourneyIcons is the closed set of icon names the frontend can render.
var JourneyIcons = []string{
	"Award", "GraduationCap", "Lightbulb", "Rocket", "Trophy",
	"Star", "Book", "Code", "Users", "Target",
}

// Defaults applied to journey items when the caller omits them.
const (
	DefaultJourneyIcon      = "Lightbulb"
	DefaultJourneyIconColor = "text-indigo-600"
)
