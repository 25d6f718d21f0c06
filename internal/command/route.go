package command

import "github.com/aychen/folio/internal/store"

// Category groups commands for audit statistics and filtering.
type Category string

const (
	CategoryProjects Category = "Projects"
	CategorySkills   Category = "Skills"
	CategoryAbout    Category = "About"
	CategoryGoals    Category = "Goals"
	CategoryJourney  Category = "Journey"
	CategoryAudit    Category = "Audit"
	CategorySystem   Category = "System"
)

// TargetKey returns the document a command mutates, or "" for commands
// that touch no content document.
func TargetKey(cmd Command) store.Key {
	switch cmd.(type) {
	case *AddProject, *UpdateProject, *RemoveProject, *ReorderProjects, *AdaptiveSortProjects:
		return store.KeyProjects
	case *AddSkill, *UpdateSkill, *RemoveSkill:
		return store.KeySkills
	case *UpdateAbout, *AddRole, *RemoveRole:
		return store.KeyAbout
	case *AddGoal, *UpdateGoals, *RemoveGoal:
		return store.KeyGoals
	case *AddJourneyItem, *UpdateJourneyItem, *RemoveJourneyItem, *ReorderJourney:
		return store.KeyJourney
	case *UndoCommand, *ViewAuditLogs, *ClearAuditLogs:
		return store.KeyAuditLogs
	default:
		return ""
	}
}

// CategoryOf returns the audit category for a command.
func CategoryOf(cmd Command) Category {
	switch cmd.(type) {
	case *AddProject, *UpdateProject, *RemoveProject, *ReorderProjects, *AdaptiveSortProjects:
		return CategoryProjects
	case *AddSkill, *UpdateSkill, *RemoveSkill:
		return CategorySkills
	case *UpdateAbout, *AddRole, *RemoveRole:
		return CategoryAbout
	case *AddGoal, *UpdateGoals, *RemoveGoal:
		return CategoryGoals
	case *AddJourneyItem, *UpdateJourneyItem, *RemoveJourneyItem, *ReorderJourney:
		return CategoryJourney
	case *UndoCommand, *ViewAuditLogs, *ClearAuditLogs:
		return CategoryAudit
	default:
		return CategorySystem
	}
}

// IsDestructive reports whether a command discards data that cannot be
// recovered from the command itself.
func IsDestructive(cmd Command) bool {
	switch cmd.(type) {
	case *RemoveProject, *RemoveSkill, *RemoveRole, *RemoveGoal, *RemoveJourneyItem, *ClearAuditLogs:
		return true
	default:
		return false
	}
}

// IsUndoable reports whether an inverse command can be synthesized from
// an audit entry for this command.
func IsUndoable(cmd Command) bool {
	switch cmd.(type) {
	case *UndoCommand, *ViewAuditLogs, *ClearAuditLogs, *Noop:
		return false
	default:
		return true
	}
}
