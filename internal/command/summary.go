package command

import (
	"fmt"
	"strings"
)

// Summary renders a one-line human description of a command, used in
// audit log listings and assistant replies.
func Summary(cmd Command) string {
	switch c := cmd.(type) {
	case *AddProject:
		return fmt.Sprintf("Add project: %q (%s)", c.Title, strings.Join(c.Stack, ", "))
	case *UpdateProject:
		return fmt.Sprintf("Update project %q: %s", c.MatchTitle, strings.Join(c.Patch.Fields(), ", "))
	case *RemoveProject:
		return fmt.Sprintf("Remove project: %q", c.MatchTitle)
	case *ReorderProjects:
		s := fmt.Sprintf("Reorder projects: %s", c.Strategy)
		if c.Description != "" {
			s += " - " + c.Description
		}
		return s
	case *AdaptiveSortProjects:
		s := fmt.Sprintf("Adaptive sort projects: %s", c.Intent)
		if c.Reasoning != "" {
			s += " - " + c.Reasoning
		}
		return s
	case *AddSkill:
		return fmt.Sprintf("Add skill: %s (%s, level %d%%)", c.Name, c.Category, c.Level)
	case *UpdateSkill:
		return fmt.Sprintf("Update skill %q: %s", c.MatchName, strings.Join(c.Patch.Fields(), ", "))
	case *RemoveSkill:
		return fmt.Sprintf("Remove skill: %q", c.MatchName)
	case *UpdateAbout:
		return fmt.Sprintf("Update %s: %q", c.Field, c.Value)
	case *AddRole:
		return fmt.Sprintf("Add role: %q", c.Role)
	case *RemoveRole:
		return fmt.Sprintf("Remove role: %q", c.Role)
	case *AddGoal:
		return fmt.Sprintf("Add %s goal: %q", c.Kind, c.Goal)
	case *UpdateGoals:
		return fmt.Sprintf("Update %s: %q", c.Field, c.Value)
	case *RemoveGoal:
		return fmt.Sprintf("Remove goal: %q", c.MatchGoal)
	case *AddJourneyItem:
		return fmt.Sprintf("Add %s milestone: %q (%s)", c.Timeline, c.Title, c.Year)
	case *UpdateJourneyItem:
		return fmt.Sprintf("Update %s milestone %q: %s", c.Timeline, c.ItemID, strings.Join(c.Patch.Fields(), ", "))
	case *RemoveJourneyItem:
		return fmt.Sprintf("Remove %s milestone: %q", c.Timeline, c.ItemID)
	case *ReorderJourney:
		return fmt.Sprintf("Reorder %s timeline: %s", c.Timeline, c.Strategy)
	case *UndoCommand:
		s := fmt.Sprintf("Undo command: %s", c.AuditLogID)
		if c.Reason != "" {
			s += " - " + c.Reason
		}
		return s
	case *ViewAuditLogs:
		var parts []string
		if f := c.FilterBy; f != nil {
			if f.CommandType != "" {
				parts = append(parts, "type: "+f.CommandType)
			}
			if f.Category != "" {
				parts = append(parts, "category: "+f.Category)
			}
			if f.SuccessOnly {
				parts = append(parts, "successful only")
			}
			if f.DestructiveOnly {
				parts = append(parts, "destructive only")
			}
		}
		s := fmt.Sprintf("View audit logs: %d entries", c.Limit)
		if len(parts) > 0 {
			s += " (" + strings.Join(parts, ", ") + ")"
		}
		return s
	case *ClearAuditLogs:
		if c.OlderThan != "" {
			return "Clear audit logs older than " + c.OlderThan
		}
		return "Clear audit logs (all)"
	case *Noop:
		if c.Reason != "" {
			return c.Reason
		}
		return "No action needed"
	default:
		return "Unknown command"
	}
}
