package executor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aychen/folio/internal/command"
	"github.com/aychen/folio/internal/content"
)

// apply computes the new document for a content command. It never
// touches the store; the caller handles persistence and audit.
func apply(cmd command.Command, before json.RawMessage) (json.RawMessage, string, error) {
	switch c := cmd.(type) {
	case *command.AddProject, *command.UpdateProject, *command.RemoveProject,
		*command.ReorderProjects, *command.AdaptiveSortProjects:
		return applyProjects(c, before)
	case *command.AddSkill, *command.UpdateSkill, *command.RemoveSkill:
		return applySkills(c, before)
	case *command.UpdateAbout, *command.AddRole, *command.RemoveRole:
		return applyAbout(c, before)
	case *command.AddGoal, *command.UpdateGoals, *command.RemoveGoal:
		return applyGoals(c, before)
	case *command.AddJourneyItem, *command.UpdateJourneyItem,
		*command.RemoveJourneyItem, *command.ReorderJourney:
		return applyJourney(c, before)
	default:
		return nil, "", &UnsupportedOperationError{Operation: string(cmd.Type())}
	}
}

func applyProjects(cmd command.Command, before json.RawMessage) (json.RawMessage, string, error) {
	var projects []content.Project
	if err := json.Unmarshal(before, &projects); err != nil {
		return nil, "", fmt.Errorf("decoding projects: %w", err)
	}

	var msg string
	switch c := cmd.(type) {
	case *command.AddProject:
		if idx := findProjectIndex(projects, c.Title); idx >= 0 {
			return nil, "", &AlreadyExistsError{Entity: "project", Name: projects[idx].Title}
		}
		projects = append(projects, content.Project{
			Title:       c.Title,
			Description: c.Description,
			Stack:       c.Stack,
			Year:        c.Year,
			Links:       c.Links,
			Featured:    c.Featured,
			Status:      c.Status,
			Lessons:     c.Lessons,
		})
		msg = fmt.Sprintf("Added project %q", c.Title)

	case *command.UpdateProject:
		idx := findProjectIndex(projects, c.MatchTitle)
		if idx < 0 {
			return nil, "", &NotFoundError{Entity: "project", Match: c.MatchTitle, Available: projectTitles(projects)}
		}
		c.Patch.Apply(&projects[idx])
		msg = fmt.Sprintf("Updated project %q (%s)", projects[idx].Title, strings.Join(c.Patch.Fields(), ", "))

	case *command.RemoveProject:
		idx := findProjectIndex(projects, c.MatchTitle)
		if idx < 0 {
			return nil, "", &NotFoundError{Entity: "project", Match: c.MatchTitle, Available: projectTitles(projects)}
		}
		removed := projects[idx].Title
		projects = append(projects[:idx], projects[idx+1:]...)
		msg = fmt.Sprintf("Removed project %q", removed)

	case *command.ReorderProjects:
		if err := reorderProjects(projects, c.Strategy, c.CustomOrder); err != nil {
			return nil, "", err
		}
		msg = fmt.Sprintf("Reordered projects (%s)", c.Strategy)

	case *command.AdaptiveSortProjects:
		reasoning, err := adaptiveSortProjects(projects, c)
		if err != nil {
			return nil, "", err
		}
		msg = reasoning
	}

	after, err := json.Marshal(projects)
	if err != nil {
		return nil, "", fmt.Errorf("encoding projects: %w", err)
	}
	return after, msg, nil
}

func applySkills(cmd command.Command, before json.RawMessage) (json.RawMessage, string, error) {
	var skills []content.Skill
	if err := json.Unmarshal(before, &skills); err != nil {
		return nil, "", fmt.Errorf("decoding skills: %w", err)
	}

	var msg string
	switch c := cmd.(type) {
	case *command.AddSkill:
		if idx := findSkillIndex(skills, c.Name); idx >= 0 {
			return nil, "", &AlreadyExistsError{Entity: "skill", Name: skills[idx].Name}
		}
		skills = append(skills, content.Skill{
			Name:       c.Name,
			IconName:   c.IconName,
			ColorClass: c.ColorClass,
			Category:   c.Category,
			Level:      c.Level,
		})
		msg = fmt.Sprintf("Added skill %q (%s, level %d%%)", c.Name, c.Category, c.Level)

	case *command.UpdateSkill:
		idx := findSkillIndex(skills, c.MatchName)
		if idx < 0 {
			return nil, "", &NotFoundError{Entity: "skill", Match: c.MatchName, Available: skillNames(skills)}
		}
		c.Patch.Apply(&skills[idx])
		msg = fmt.Sprintf("Updated skill %q (%s)", skills[idx].Name, strings.Join(c.Patch.Fields(), ", "))

	case *command.RemoveSkill:
		idx := findSkillIndex(skills, c.MatchName)
		if idx < 0 {
			return nil, "", &NotFoundError{Entity: "skill", Match: c.MatchName, Available: skillNames(skills)}
		}
		removed := skills[idx].Name
		skills = append(skills[:idx], skills[idx+1:]...)
		msg = fmt.Sprintf("Removed skill %q", removed)
	}

	after, err := json.Marshal(skills)
	if err != nil {
		return nil, "", fmt.Errorf("encoding skills: %w", err)
	}
	return after, msg, nil
}

func applyAbout(cmd command.Command, before json.RawMessage) (json.RawMessage, string, error) {
	var about content.About
	if err := json.Unmarshal(before, &about); err != nil {
		return nil, "", fmt.Errorf("decoding about: %w", err)
	}

	var msg string
	switch c := cmd.(type) {
	case *command.UpdateAbout:
		switch c.Field {
		case "name":
			about.Name = c.Value
		case "title":
			about.Title = c.Value
		case "location":
			about.Location = c.Value
		case "bio":
			about.Bio = c.Value
		case "email":
			about.Email = c.Value
		case "github":
			about.GitHub = c.Value
		case "linkedin":
			about.LinkedIn = c.Value
		default:
			return nil, "", &UnsupportedOperationError{Operation: fmt.Sprintf("update_about field %q", c.Field)}
		}
		msg = fmt.Sprintf("Updated %s to %q", c.Field, c.Value)

	case *command.AddRole:
		for _, role := range about.Roles {
			if role == c.Role {
				return nil, "", &AlreadyExistsError{Entity: "role", Name: c.Role}
			}
		}
		about.Roles = append(about.Roles, c.Role)
		msg = fmt.Sprintf("Added role %q", c.Role)

	case *command.RemoveRole:
		idx := -1
		for i, role := range about.Roles {
			if role == c.Role {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, "", &NotFoundError{Entity: "role", Match: c.Role, Available: about.Roles}
		}
		about.Roles = append(about.Roles[:idx], about.Roles[idx+1:]...)
		msg = fmt.Sprintf("Removed role %q", c.Role)
	}

	after, err := json.Marshal(about)
	if err != nil {
		return nil, "", fmt.Errorf("encoding about: %w", err)
	}
	return after, msg, nil
}

func applyGoals(cmd command.Command, before json.RawMessage) (json.RawMessage, string, error) {
	var goals content.Goals
	if err := json.Unmarshal(before, &goals); err != nil {
		return nil, "", fmt.Errorf("decoding goals: %w", err)
	}

	var msg string
	switch c := cmd.(type) {
	case *command.AddGoal:
		if c.Kind == command.GoalShortTerm {
			goals.ShortTerm = append(goals.ShortTerm, c.Goal)
		} else {
			goals.LongTerm = append(goals.LongTerm, c.Goal)
		}
		msg = fmt.Sprintf("Added %s goal %q", c.Kind, c.Goal)

	case *command.UpdateGoals:
		switch c.Field {
		case "currentFocus":
			goals.CurrentFocus = c.Value
		case "vision":
			goals.Vision = c.Value
		case "mission":
			goals.Mission = c.Value
		default:
			return nil, "", &UnsupportedOperationError{Operation: fmt.Sprintf("update_goals field %q", c.Field)}
		}
		msg = fmt.Sprintf("Updated %s to %q", c.Field, c.Value)

	case *command.RemoveGoal:
		// Exact matches win over substring matches so undoing an add
		// never deletes a longer goal that happens to contain the
		// text; short term goals are searched first in both passes.
		exact := func(g string) bool { return strings.EqualFold(g, c.MatchGoal) }
		needle := strings.ToLower(c.MatchGoal)
		substr := func(g string) bool { return strings.Contains(strings.ToLower(g), needle) }

		removed := ""
		for _, match := range []func(string) bool{exact, substr} {
			for _, list := range []*[]string{&goals.ShortTerm, &goals.LongTerm} {
				for i, g := range *list {
					if match(g) {
						removed = g
						*list = append((*list)[:i], (*list)[i+1:]...)
						break
					}
				}
				if removed != "" {
					break
				}
			}
			if removed != "" {
				break
			}
		}
		if removed == "" {
			available := append(append([]string{}, goals.ShortTerm...), goals.LongTerm...)
			return nil, "", &NotFoundError{Entity: "goal", Match: c.MatchGoal, Available: available}
		}
		msg = fmt.Sprintf("Removed goal %q", removed)
	}

	after, err := json.Marshal(goals)
	if err != nil {
		return nil, "", fmt.Errorf("encoding goals: %w", err)
	}
	return after, msg, nil
}

func applyJourney(cmd command.Command, before json.RawMessage) (json.RawMessage, string, error) {
	var journey content.Journey
	if err := json.Unmarshal(before, &journey); err != nil {
		return nil, "", fmt.Errorf("decoding journey: %w", err)
	}

	var msg string
	switch c := cmd.(type) {
	case *command.AddJourneyItem:
		timeline := journey.Timeline(c.Timeline)
		if timeline == nil {
			return nil, "", &UnsupportedOperationError{Operation: fmt.Sprintf("timeline %q", c.Timeline)}
		}
		item := content.JourneyItem{
			ID:        uuid.New().String(),
			Year:      c.Year,
			Title:     c.Title,
			Desc:      c.Desc,
			Icon:      c.Icon,
			IconColor: c.IconColor,
		}
		*timeline = append(*timeline, item)
		msg = fmt.Sprintf("Added %s milestone %q (%s)", c.Timeline, c.Title, c.Year)

	case *command.UpdateJourneyItem:
		timeline := journey.Timeline(c.Timeline)
		if timeline == nil {
			return nil, "", &UnsupportedOperationError{Operation: fmt.Sprintf("timeline %q", c.Timeline)}
		}
		idx := findJourneyIndex(*timeline, c.ItemID)
		if idx < 0 {
			return nil, "", &NotFoundError{Entity: "milestone", Match: c.ItemID, Available: journeyIDs(*timeline)}
		}
		c.Patch.Apply(&(*timeline)[idx])
		msg = fmt.Sprintf("Updated %s milestone %q (%s)", c.Timeline, (*timeline)[idx].Title, strings.Join(c.Patch.Fields(), ", "))

	case *command.RemoveJourneyItem:
		timeline := journey.Timeline(c.Timeline)
		if timeline == nil {
			return nil, "", &UnsupportedOperationError{Operation: fmt.Sprintf("timeline %q", c.Timeline)}
		}
		idx := findJourneyIndex(*timeline, c.ItemID)
		if idx < 0 {
			return nil, "", &NotFoundError{Entity: "milestone", Match: c.ItemID, Available: journeyIDs(*timeline)}
		}
		removed := (*timeline)[idx].Title
		*timeline = append((*timeline)[:idx], (*timeline)[idx+1:]...)
		msg = fmt.Sprintf("Removed %s milestone %q", c.Timeline, removed)

	case *command.ReorderJourney:
		timeline := journey.Timeline(c.Timeline)
		if timeline == nil {
			return nil, "", &UnsupportedOperationError{Operation: fmt.Sprintf("timeline %q", c.Timeline)}
		}
		if err := reorderJourney(*timeline, c.Strategy, c.CustomOrder); err != nil {
			return nil, "", err
		}
		msg = fmt.Sprintf("Reordered %s timeline (%s)", c.Timeline, c.Strategy)
	}

	after, err := json.Marshal(journey)
	if err != nil {
		return nil, "", fmt.Errorf("encoding journey: %w", err)
	}
	return after, msg, nil
}

func findProjectIndex(projects []content.Project, title string) int {
	for i := range projects {
		if strings.EqualFold(projects[i].Title, title) {
			return i
		}
	}
	return -1
}

func projectTitles(projects []content.Project) []string {
	titles := make([]string, len(projects))
	for i, p := range projects {
		titles[i] = p.Title
	}
	return titles
}

func findSkillIndex(skills []content.Skill, name string) int {
	for i := range skills {
		if strings.EqualFold(skills[i].Name, name) {
			return i
		}
	}
	return -1
}

func skillNames(skills []content.Skill) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}

func findJourneyIndex(items []content.JourneyItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func journeyIDs(items []content.JourneyItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
