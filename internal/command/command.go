// Package command defines the closed set of operations the assistant
// can request against the portfolio documents, along with validation,
// routing metadata, and user-facing summaries. Commands travel as a
// discriminated JSON envelope: {"type": ..., "payload": {...}}.
package command

import (
	"encoding/json"
	"fmt"

	"github.com/aychen/folio/internal/content"
)

// Type discriminates command variants on the wire.
type Type string

const (
	TypeAddProject          Type = "add_project"
	TypeUpdateProject       Type = "update_project"
	TypeRemoveProject       Type = "remove_project"
	TypeReorderProjects     Type = "reorder_projects"
	TypeAdaptiveSort        Type = "adaptive_sort_projects"
	TypeAddSkill            Type = "add_skill"
	TypeUpdateSkill         Type = "update_skill"
	TypeRemoveSkill         Type = "remove_skill"
	TypeUpdateAbout         Type = "update_about"
	TypeAddRole             Type = "add_role"
	TypeRemoveRole          Type = "remove_role"
	TypeAddGoal             Type = "add_goal"
	TypeUpdateGoals         Type = "update_goals"
	TypeRemoveGoal          Type = "remove_goal"
	TypeAddJourneyItem      Type = "add_journey_item"
	TypeUpdateJourneyItem   Type = "update_journey_item"
	TypeRemoveJourneyItem   Type = "remove_journey_item"
	TypeReorderJourney      Type = "reorder_journey"
	TypeUndoCommand         Type = "undo_command"
	TypeViewAuditLogs       Type = "view_audit_logs"
	TypeClearAuditLogs      Type = "clear_audit_logs"
	TypeNoop                Type = "noop"
)

// Types returns every command type in a stable order.
func Types() []Type {
	return []Type{
		TypeAddProject, TypeUpdateProject, TypeRemoveProject,
		TypeReorderProjects, TypeAdaptiveSort,
		TypeAddSkill, TypeUpdateSkill, TypeRemoveSkill,
		TypeUpdateAbout, TypeAddRole, TypeRemoveRole,
		TypeAddGoal, TypeUpdateGoals, TypeRemoveGoal,
		TypeAddJourneyItem, TypeUpdateJourneyItem, TypeRemoveJourneyItem,
		TypeReorderJourney,
		TypeUndoCommand, TypeViewAuditLogs, TypeClearAuditLogs, TypeNoop,
	}
}

// Command is the sealed union of command payloads. Only types in this
// package implement it.
type Command interface {
	Type() Type
	isCommand()
}

// ReorderStrategy selects how reorder_projects arranges the collection.
type ReorderStrategy string

const (
	StrategyFeaturedFirst ReorderStrategy = "featured_first"
	StrategyByYearDesc    ReorderStrategy = "by_year_desc"
	StrategyByYearAsc     ReorderStrategy = "by_year_asc"
	StrategyByTechStack   ReorderStrategy = "by_tech_stack"
	StrategyByStatus      ReorderStrategy = "by_status"
	StrategyCustomOrder   ReorderStrategy = "custom_order"
)

// SortIntent selects the adaptive_sort_projects behavior.
type SortIntent string

const (
	IntentPrioritizeProject    SortIntent = "prioritize_specific_project"
	IntentPrioritizeCategory   SortIntent = "prioritize_category"
	IntentPrioritizeTechnology SortIntent = "prioritize_technology"
	IntentPrioritizeKeywords   SortIntent = "prioritize_by_keywords"
	IntentCustomAdaptive       SortIntent = "custom_adaptive_sort"
)

// AddProject inserts a project. Title collisions are rejected
// case-insensitively.
type AddProject struct {
	Title       string         `json:"title" validate:"notblank"`
	Description string         `json:"description" validate:"notblank"`
	Stack       []string       `json:"stack"`
	Year        int            `json:"year" validate:"min=2020,max=2030"`
	Links       content.Links  `json:"links"`
	Featured    bool           `json:"featured"`
	Status      content.Status `json:"status" validate:"omitempty,oneof=planning in-progress completed"`
	Lessons     []string       `json:"lessons"`
}

// UpdateProject applies a partial patch to the project matching
// MatchTitle (case-insensitive).
type UpdateProject struct {
	MatchTitle string       `json:"matchTitle" validate:"notblank"`
	Patch      ProjectPatch `json:"patch"`
}

// RemoveProject deletes the project matching MatchTitle.
type RemoveProject struct {
	MatchTitle string `json:"matchTitle" validate:"notblank"`
}

// ReorderProjects rearranges the projects collection by strategy.
// CustomOrder is the title order used by the custom_order strategy.
type ReorderProjects struct {
	Strategy    ReorderStrategy `json:"strategy" validate:"omitempty,oneof=featured_first by_year_desc by_year_asc by_tech_stack by_status custom_order"`
	CustomOrder []string        `json:"customOrder"`
	Description string          `json:"description"`
}

// AdaptiveSortProjects reorders the projects collection around a
// stated intent, scoring projects against a category keyword table,
// a technology list, or free keywords.
type AdaptiveSortProjects struct {
	Intent        SortIntent `json:"intent" validate:"oneof=prioritize_specific_project prioritize_category prioritize_technology prioritize_by_keywords custom_adaptive_sort"`
	TargetProject string     `json:"targetProject"`
	Category      string     `json:"category" validate:"omitempty,oneof=ai_ml data_science web_development mobile_development backend full_stack cloud_computing automation"`
	Technologies  []string   `json:"technologies"`
	Keywords      []string   `json:"keywords"`
	Reasoning     string     `json:"reasoning"`
}

// AddSkill inserts a skill. Name collisions are rejected
// case-insensitively.
type AddSkill struct {
	Name       string `json:"name" validate:"notblank"`
	IconName   string `json:"iconName" validate:"notblank"`
	ColorClass string `json:"colorClass" validate:"notblank"`
	Category   string `json:"category" validate:"oneof=Frontend Backend Mobile AI/ML Databases Tools"`
	Level      int    `json:"level" validate:"min=0,max=100"`
}

// UpdateSkill applies a partial patch to the skill matching MatchName
// (case-insensitive).
type UpdateSkill struct {
	MatchName string     `json:"matchName" validate:"notblank"`
	Patch     SkillPatch `json:"patch"`
}

// RemoveSkill deletes the skill matching MatchName.
type RemoveSkill struct {
	MatchName string `json:"matchName" validate:"notblank"`
}

// AboutField names one scalar field of the about document.
type AboutField string

// UpdateAbout replaces a single scalar field of the about document.
type UpdateAbout struct {
	Field AboutField `json:"field" validate:"oneof=name title location bio email github linkedin"`
	Value string     `json:"value" validate:"notblank"`
}

// AddRole appends a role to the about document. Exact duplicates are
// rejected.
type AddRole struct {
	Role string `json:"role" validate:"notblank"`
}

// RemoveRole deletes an exactly matching role from the about document.
type RemoveRole struct {
	Role string `json:"role" validate:"notblank"`
}

// GoalKind selects the short or long term goal list.
type GoalKind string

const (
	GoalShortTerm GoalKind = "shortTerm"
	GoalLongTerm  GoalKind = "longTerm"
)

// AddGoal appends a goal to the selected list.
type AddGoal struct {
	Kind GoalKind `json:"type" validate:"oneof=shortTerm longTerm"`
	Goal string   `json:"goal" validate:"notblank"`
}

// GoalsField names one narrative field of the goals document.
type GoalsField string

// UpdateGoals replaces a single narrative field of the goals document.
type UpdateGoals struct {
	Field GoalsField `json:"field" validate:"oneof=currentFocus vision mission"`
	Value string     `json:"value" validate:"notblank"`
}

// RemoveGoal deletes the first goal containing MatchGoal
// (case-insensitive substring), searching short term goals before long
// term ones.
type RemoveGoal struct {
	MatchGoal string `json:"matchGoal" validate:"notblank"`
}

// AddJourneyItem appends a milestone to a journey timeline. The item ID
// is generated on insert.
type AddJourneyItem struct {
	Timeline  string `json:"timeline" validate:"oneof=student entrepreneur"`
	Year      string `json:"year" validate:"notblank"`
	Title     string `json:"title" validate:"notblank"`
	Desc      string `json:"desc" validate:"notblank"`
	Icon      string `json:"icon" validate:"omitempty,oneof=Award GraduationCap Lightbulb Rocket Trophy Star Book Code Users Target"`
	IconColor string `json:"iconColor"`
}

// UpdateJourneyItem applies a partial patch to the item with ItemID on
// the given timeline.
type UpdateJourneyItem struct {
	Timeline string           `json:"timeline" validate:"oneof=student entrepreneur"`
	ItemID   string           `json:"itemId" validate:"notblank"`
	Patch    JourneyItemPatch `json:"patch"`
}

// RemoveJourneyItem deletes the item with ItemID from the given timeline.
type RemoveJourneyItem struct {
	Timeline string `json:"timeline" validate:"oneof=student entrepreneur"`
	ItemID   string `json:"itemId" validate:"notblank"`
}

// ReorderJourney rearranges one journey timeline. CustomOrder is the
// item ID order used by the custom_order strategy.
type ReorderJourney struct {
	Timeline    string          `json:"timeline" validate:"oneof=student entrepreneur"`
	Strategy    ReorderStrategy `json:"strategy" validate:"omitempty,oneof=by_year_asc by_year_desc custom_order"`
	CustomOrder []string        `json:"customOrder"`
}

// UndoCommand reverts the effect of a previously logged command.
type UndoCommand struct {
	AuditLogID string `json:"auditLogId" validate:"uuid"`
	Reason     string `json:"reason"`
}

// AuditDateRange bounds an audit log query. Values are RFC 3339
// timestamps; either side may be empty.
type AuditDateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AuditFilter narrows a view_audit_logs query. All set fields must
// match.
type AuditFilter struct {
	CommandType     string          `json:"commandType"`
	Category        string          `json:"category" validate:"omitempty,oneof=Projects Skills About Goals Journey Audit System"`
	DateRange       *AuditDateRange `json:"dateRange"`
	SuccessOnly     bool            `json:"successOnly"`
	DestructiveOnly bool            `json:"destructiveOnly"`
}

// ViewAuditLogs reads recent audit entries, newest first.
type ViewAuditLogs struct {
	Limit    int          `json:"limit" validate:"omitempty,min=1,max=100"`
	Offset   int          `json:"offset" validate:"min=0"`
	FilterBy *AuditFilter `json:"filterBy"`
}

// ClearAuditLogs deletes audit entries, optionally only those older
// than a cutoff. ConfirmationCode must carry the expected token.
type ClearAuditLogs struct {
	OlderThan        string `json:"olderThan"`
	ConfirmationCode string `json:"confirmationCode"`
}

// Noop performs no mutation. The assistant emits it when a request
// needs no action; Reason explains why.
type Noop struct {
	Reason string `json:"reason"`
}

func (*AddProject) Type() Type           { return TypeAddProject }
func (*UpdateProject) Type() Type        { return TypeUpdateProject }
func (*RemoveProject) Type() Type        { return TypeRemoveProject }
func (*ReorderProjects) Type() Type      { return TypeReorderProjects }
func (*AdaptiveSortProjects) Type() Type { return TypeAdaptiveSort }
func (*AddSkill) Type() Type             { return TypeAddSkill }
func (*UpdateSkill) Type() Type          { return TypeUpdateSkill }
func (*RemoveSkill) Type() Type          { return TypeRemoveSkill }
func (*UpdateAbout) Type() Type          { return TypeUpdateAbout }
func (*AddRole) Type() Type              { return TypeAddRole }
func (*RemoveRole) Type() Type           { return TypeRemoveRole }
func (*AddGoal) Type() Type              { return TypeAddGoal }
func (*UpdateGoals) Type() Type          { return TypeUpdateGoals }
func (*RemoveGoal) Type() Type           { return TypeRemoveGoal }
func (*AddJourneyItem) Type() Type       { return TypeAddJourneyItem }
func (*UpdateJourneyItem) Type() Type    { return TypeUpdateJourneyItem }
func (*RemoveJourneyItem) Type() Type    { return TypeRemoveJourneyItem }
func (*ReorderJourney) Type() Type       { return TypeReorderJourney }
func (*UndoCommand) Type() Type          { return TypeUndoCommand }
func (*ViewAuditLogs) Type() Type        { return TypeViewAuditLogs }
func (*ClearAuditLogs) Type() Type       { return TypeClearAuditLogs }
func (*Noop) Type() Type                 { return TypeNoop }

func (*AddProject) isCommand()           {}
func (*UpdateProject) isCommand()        {}
func (*RemoveProject) isCommand()        {}
func (*ReorderProjects) isCommand()      {}
func (*AdaptiveSortProjects) isCommand() {}
func (*AddSkill) isCommand()             {}
func (*UpdateSkill) isCommand()          {}
func (*RemoveSkill) isCommand()          {}
func (*UpdateAbout) isCommand()          {}
func (*AddRole) isCommand()              {}
func (*RemoveRole) isCommand()           {}
func (*AddGoal) isCommand()              {}
func (*UpdateGoals) isCommand()          {}
func (*RemoveGoal) isCommand()           {}
func (*AddJourneyItem) isCommand()       {}
func (*UpdateJourneyItem) isCommand()    {}
func (*RemoveJourneyItem) isCommand()    {}
func (*ReorderJourney) isCommand()       {}
func (*UndoCommand) isCommand()          {}
func (*ViewAuditLogs) isCommand()        {}
func (*ClearAuditLogs) isCommand()       {}
func (*Noop) isCommand()                 {}

// newPayload returns a zero-valued payload for t, or nil for unknown
// types.
func newPayload(t Type) Command {
	switch t {
	case TypeAddProject:
		return &AddProject{}
	case TypeUpdateProject:
		return &UpdateProject{}
	case TypeRemoveProject:
		return &RemoveProject{}
	case TypeReorderProjects:
		return &ReorderProjects{}
	case TypeAdaptiveSort:
		return &AdaptiveSortProjects{}
	case TypeAddSkill:
		return &AddSkill{}
	case TypeUpdateSkill:
		return &UpdateSkill{}
	case TypeRemoveSkill:
		return &RemoveSkill{}
	case TypeUpdateAbout:
		return &UpdateAbout{}
	case TypeAddRole:
		return &AddRole{}
	case TypeRemoveRole:
		return &RemoveRole{}
	case TypeAddGoal:
		return &AddGoal{}
	case TypeUpdateGoals:
		return &UpdateGoals{}
	case TypeRemoveGoal:
		return &RemoveGoal{}
	case TypeAddJourneyItem:
		return &AddJourneyItem{}
	case TypeUpdateJourneyItem:
		return &UpdateJourneyItem{}
	case TypeRemoveJourneyItem:
		return &RemoveJourneyItem{}
	case TypeReorderJourney:
		return &ReorderJourney{}
	case TypeUndoCommand:
		return &UndoCommand{}
	case TypeViewAuditLogs:
		return &ViewAuditLogs{}
	case TypeClearAuditLogs:
		return &ClearAuditLogs{}
	case TypeNoop:
		return &Noop{}
	default:
		return nil
	}
}

// envelope is the wire form of a command.
type envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode serializes a command into its wire envelope. The result is
// what the audit log stores verbatim.
func Encode(cmd Command) (json.RawMessage, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s payload: %w", cmd.Type(), err)
	}
	raw, err := json.Marshal(envelope{Type: cmd.Type(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("marshaling %s envelope: %w", cmd.Type(), err)
	}
	return raw, nil
}
