package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aychen/folio/internal/command"
	"github.com/aychen/folio/internal/content"
)

// ErrNotUndoable is returned when no inverse exists for an entry.
var ErrNotUndoable = errors.New("command cannot be undone")

// SynthesizeUndo derives the inverse command for a logged entry from
// the command itself and the before/after snapshots. The result is
// never an undo_command; undoing is always expressed as a plain
// content command that gets its own audit entry when executed.
func SynthesizeUndo(e Entry) (command.Command, error) {
	if !e.Result.Success {
		return nil, fmt.Errorf("%w: original command failed", ErrNotUndoable)
	}
	if !e.Metadata.IsUndoable {
		return nil, fmt.Errorf("%w: %s", ErrNotUndoable, e.CommandType())
	}

	orig, err := command.Validate(e.Command)
	if err != nil {
		return nil, fmt.Errorf("decoding logged command: %w", err)
	}

	switch c := orig.(type) {
	case *command.AddProject:
		return &command.RemoveProject{MatchTitle: c.Title}, nil

	case *command.RemoveProject:
		projects, err := decodeProjects(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		p := findProject(projects, c.MatchTitle)
		if p == nil {
			return nil, fmt.Errorf("%w: removed project %q missing from snapshot", ErrNotUndoable, c.MatchTitle)
		}
		return &command.AddProject{
			Title:       p.Title,
			Description: p.Description,
			Stack:       p.Stack,
			Year:        p.Year,
			Links:       p.Links,
			Featured:    p.Featured,
			Status:      p.Status,
			Lessons:     p.Lessons,
		}, nil

	case *command.UpdateProject:
		projects, err := decodeProjects(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		p := findProject(projects, c.MatchTitle)
		if p == nil {
			return nil, fmt.Errorf("%w: project %q missing from snapshot", ErrNotUndoable, c.MatchTitle)
		}
		match := c.MatchTitle
		if c.Patch.Title != nil {
			// The update may have renamed the project.
			match = *c.Patch.Title
		}
		return &command.UpdateProject{MatchTitle: match, Patch: c.Patch.Revert(*p)}, nil

	case *command.ReorderProjects, *command.AdaptiveSortProjects:
		projects, err := decodeProjects(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		titles := make([]string, len(projects))
		for i, p := range projects {
			titles[i] = p.Title
		}
		return &command.ReorderProjects{
			Strategy:    command.StrategyCustomOrder,
			CustomOrder: titles,
			Description: fmt.Sprintf("Restore order before %s", orig.Type()),
		}, nil

	case *command.AddSkill:
		return &command.RemoveSkill{MatchName: c.Name}, nil

	case *command.RemoveSkill:
		skills, err := decodeSkills(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		s := findSkill(skills, c.MatchName)
		if s == nil {
			return nil, fmt.Errorf("%w: removed skill %q missing from snapshot", ErrNotUndoable, c.MatchName)
		}
		return &command.AddSkill{
			Name:       s.Name,
			IconName:   s.IconName,
			ColorClass: s.ColorClass,
			Category:   s.Category,
			Level:      s.Level,
		}, nil

	case *command.UpdateSkill:
		skills, err := decodeSkills(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		s := findSkill(skills, c.MatchName)
		if s == nil {
			return nil, fmt.Errorf("%w: skill %q missing from snapshot", ErrNotUndoable, c.MatchName)
		}
		match := c.MatchName
		if c.Patch.Name != nil {
			match = *c.Patch.Name
		}
		return &command.UpdateSkill{MatchName: match, Patch: c.Patch.Revert(*s)}, nil

	case *command.UpdateAbout:
		about, err := decodeAbout(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		return &command.UpdateAbout{Field: c.Field, Value: aboutField(about, c.Field)}, nil

	case *command.AddRole:
		return &command.RemoveRole{Role: c.Role}, nil

	case *command.RemoveRole:
		return &command.AddRole{Role: c.Role}, nil

	case *command.AddGoal:
		return &command.RemoveGoal{MatchGoal: c.Goal}, nil

	case *command.RemoveGoal:
		goals, err := decodeGoals(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		kind, goal := findGoal(goals, c.MatchGoal)
		if goal == "" {
			return nil, fmt.Errorf("%w: removed goal %q missing from snapshot", ErrNotUndoable, c.MatchGoal)
		}
		return &command.AddGoal{Kind: kind, Goal: goal}, nil

	case *command.UpdateGoals:
		goals, err := decodeGoals(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		return &command.UpdateGoals{Field: c.Field, Value: goalsField(goals, c.Field)}, nil

	case *command.AddJourneyItem:
		journey, err := decodeJourney(e.Snapshot.After)
		if err != nil {
			return nil, err
		}
		item := findJourneyItemByContent(journey, c.Timeline, c.Title, c.Year)
		if item == nil {
			return nil, fmt.Errorf("%w: added milestone %q missing from snapshot", ErrNotUndoable, c.Title)
		}
		return &command.RemoveJourneyItem{Timeline: c.Timeline, ItemID: item.ID}, nil

	case *command.RemoveJourneyItem:
		journey, err := decodeJourney(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		item := findJourneyItemByID(journey, c.Timeline, c.ItemID)
		if item == nil {
			return nil, fmt.Errorf("%w: removed milestone %q missing from snapshot", ErrNotUndoable, c.ItemID)
		}
		// Re-inserting generates a fresh ID; the content is what matters.
		return &command.AddJourneyItem{
			Timeline:  c.Timeline,
			Year:      item.Year,
			Title:     item.Title,
			Desc:      item.Desc,
			Icon:      item.Icon,
			IconColor: item.IconColor,
		}, nil

	case *command.UpdateJourneyItem:
		journey, err := decodeJourney(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		item := findJourneyItemByID(journey, c.Timeline, c.ItemID)
		if item == nil {
			return nil, fmt.Errorf("%w: milestone %q missing from snapshot", ErrNotUndoable, c.ItemID)
		}
		return &command.UpdateJourneyItem{Timeline: c.Timeline, ItemID: c.ItemID, Patch: c.Patch.Revert(*item)}, nil

	case *command.ReorderJourney:
		journey, err := decodeJourney(e.Snapshot.Before)
		if err != nil {
			return nil, err
		}
		timeline := journey.Timeline(c.Timeline)
		ids := make([]string, len(*timeline))
		for i, item := range *timeline {
			ids[i] = item.ID
		}
		return &command.ReorderJourney{
			Timeline:    c.Timeline,
			Strategy:    command.StrategyCustomOrder,
			CustomOrder: ids,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrNotUndoable, orig.Type())
	}
}

func decodeProjects(raw json.RawMessage) ([]content.Project, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: missing projects snapshot", ErrNotUndoable)
	}
	var projects []content.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("decoding projects snapshot: %w", err)
	}
	return projects, nil
}

func decodeSkills(raw json.RawMessage) ([]content.Skill, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: missing skills snapshot", ErrNotUndoable)
	}
	var skills []content.Skill
	if err := json.Unmarshal(raw, &skills); err != nil {
		return nil, fmt.Errorf("decoding skills snapshot: %w", err)
	}
	return skills, nil
}

func decodeAbout(raw json.RawMessage) (content.About, error) {
	var about content.About
	if raw == nil {
		return about, fmt.Errorf("%w: missing about snapshot", ErrNotUndoable)
	}
	if err := json.Unmarshal(raw, &about); err != nil {
		return about, fmt.Errorf("decoding about snapshot: %w", err)
	}
	return about, nil
}

func decodeGoals(raw json.RawMessage) (content.Goals, error) {
	var goals content.Goals
	if raw == nil {
		return goals, fmt.Errorf("%w: missing goals snapshot", ErrNotUndoable)
	}
	if err := json.Unmarshal(raw, &goals); err != nil {
		return goals, fmt.Errorf("decoding goals snapshot: %w", err)
	}
	return goals, nil
}

func decodeJourney(raw json.RawMessage) (content.Journey, error) {
	var journey content.Journey
	if raw == nil {
		return journey, fmt.Errorf("%w: missing journey snapshot", ErrNotUndoable)
	}
	if err := json.Unmarshal(raw, &journey); err != nil {
		return journey, fmt.Errorf("decoding journey snapshot: %w", err)
	}
	return journey, nil
}

func findProject(projects []content.Project, title string) *content.Project {
	for i := range projects {
		if strings.EqualFold(projects[i].Title, title) {
			return &projects[i]
		}
	}
	return nil
}

func findSkill(skills []content.Skill, name string) *content.Skill {
	for i := range skills {
		if strings.EqualFold(skills[i].Name, name) {
			return &skills[i]
		}
	}
	return nil
}

// findGoal mirrors the executor's goal matching: exact matches before
// substring matches, short term before long term in both passes.
func findGoal(goals content.Goals, match string) (command.GoalKind, string) {
	needle := strings.ToLower(match)
	substr := func(g string) bool { return strings.Contains(strings.ToLower(g), needle) }
	for _, matchFn := range []func(string) bool{
		func(g string) bool { return strings.EqualFold(g, match) },
		substr,
	} {
		for _, g := range goals.ShortTerm {
			if matchFn(g) {
				return command.GoalShortTerm, g
			}
		}
		for _, g := range goals.LongTerm {
			if matchFn(g) {
				return command.GoalLongTerm, g
			}
		}
	}
	return "", ""
}

func findJourneyItemByID(journey content.Journey, timeline, id string) *content.JourneyItem {
	items := journey.Timeline(timeline)
	if items == nil {
		return nil
	}
	for i := range *items {
		if (*items)[i].ID == id {
			return &(*items)[i]
		}
	}
	return nil
}

func findJourneyItemByContent(journey content.Journey, timeline, title, year string) *content.JourneyItem {
	items := journey.Timeline(timeline)
	if items == nil {
		return nil
	}
	for i := range *items {
		if (*items)[i].Title == title && (*items)[i].Year == year {
			return &(*items)[i]
		}
	}
	return nil
}

func aboutField(about content.About, field command.AboutField) string {
	switch field {
	case "name":
		return about.Name
	case "title":
		return about.Title
	case "location":
		return about.Location
	case "bio":
		return about.Bio
	case "email":
		return about.Email
	case "github":
		return about.GitHub
	case "linkedin":
		return about.LinkedIn
	default:
		return ""
	}
}

func goalsField(goals content.Goals, field command.GoalsField) string {
	switch field {
	case "currentFocus":
		return goals.CurrentFocus
	case "vision":
		return goals.Vision
	case "mission":
		return goals.Mission
	default:
		return ""
	}
}
