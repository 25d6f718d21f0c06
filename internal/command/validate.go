package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aychen/folio/internal/content"
)

// ValidationError reports every problem found in a candidate command,
// not just the first, so the assistant can correct itself in one pass.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid command: " + strings.Join(e.Problems, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so problems match the wire form.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// Validate parses and checks a raw command envelope, returning the
// typed command with defaults applied. All failures are reported as a
// *ValidationError.
func Validate(raw []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ValidationError{Problems: []string{"malformed command JSON: " + err.Error()}}
	}
	if env.Type == "" {
		return nil, &ValidationError{Problems: []string{"missing command type"}}
	}

	cmd := newPayload(env.Type)
	if cmd == nil {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("unknown command type %q", env.Type)}}
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, cmd); err != nil {
			return nil, &ValidationError{Problems: []string{fmt.Sprintf("malformed %s payload: %s", env.Type, err)}}
		}
	}

	applyDefaults(cmd)

	var problems []string
	if err := validate.Struct(cmd); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, describeFieldError(fe))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}
	problems = append(problems, checkCommand(cmd)...)

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return cmd, nil
}

// describeFieldError renders one validator failure as a wire-level path
// plus a human-readable rule.
func describeFieldError(fe validator.FieldError) string {
	path := fe.Namespace()
	if i := strings.Index(path, "."); i >= 0 {
		path = path[i+1:]
	}
	switch fe.Tag() {
	case "notblank":
		return fmt.Sprintf("%s: must not be blank", path)
	case "oneof":
		return fmt.Sprintf("%s: must be one of %s", path, strings.Join(strings.Fields(fe.Param()), ", "))
	case "min":
		return fmt.Sprintf("%s: must be at least %s", path, fe.Param())
	case "max":
		return fmt.Sprintf("%s: must be at most %s", path, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s validation", path, fe.Tag())
	}
}

// applyDefaults fills the documented default values for fields the
// caller omitted.
func applyDefaults(cmd Command) {
	switch c := cmd.(type) {
	case *AddProject:
		if c.Status == "" {
			c.Status = content.StatusCompleted
		}
		if c.Stack == nil {
			c.Stack = []string{}
		}
		if c.Lessons == nil {
			c.Lessons = []string{}
		}
	case *ReorderProjects:
		if c.Strategy == "" {
			c.Strategy = StrategyFeaturedFirst
		}
	case *ReorderJourney:
		if c.Strategy == "" {
			c.Strategy = StrategyByYearAsc
		}
	case *AddJourneyItem:
		if c.Icon == "" {
			c.Icon = content.DefaultJourneyIcon
		}
		if c.IconColor == "" {
			c.IconColor = content.DefaultJourneyIconColor
		}
	case *ViewAuditLogs:
		if c.Limit == 0 {
			c.Limit = 20
		}
	}
}

// checkCommand holds the constraints the tag language cannot express.
func checkCommand(cmd Command) []string {
	var problems []string
	switch c := cmd.(type) {
	case *AddProject:
		problems = append(problems, checkLinks("links", c.Links)...)
	case *UpdateProject:
		if c.Patch.IsEmpty() {
			problems = append(problems, "patch: must set at least one field")
		}
		if c.Patch.Links != nil {
			problems = append(problems, checkLinks("patch.links", *c.Patch.Links)...)
		}
	case *UpdateSkill:
		if c.Patch.IsEmpty() {
			problems = append(problems, "patch: must set at least one field")
		}
	case *UpdateJourneyItem:
		if c.Patch.IsEmpty() {
			problems = append(problems, "patch: must set at least one field")
		}
	case *ReorderProjects:
		if c.Strategy == StrategyCustomOrder && len(c.CustomOrder) == 0 {
			problems = append(problems, "customOrder: required for the custom_order strategy")
		}
	case *ReorderJourney:
		if c.Strategy == StrategyCustomOrder && len(c.CustomOrder) == 0 {
			problems = append(problems, "customOrder: required for the custom_order strategy")
		}
	case *AdaptiveSortProjects:
		switch c.Intent {
		case IntentPrioritizeProject:
			if strings.TrimSpace(c.TargetProject) == "" {
				problems = append(problems, "targetProject: required for the prioritize_specific_project intent")
			}
		case IntentPrioritizeTechnology:
			if len(c.Technologies) == 0 {
				problems = append(problems, "technologies: required for the prioritize_technology intent")
			}
		case IntentPrioritizeKeywords:
			if len(c.Keywords) == 0 {
				problems = append(problems, "keywords: required for the prioritize_by_keywords intent")
			}
		}
	case *ViewAuditLogs:
		if c.FilterBy != nil && c.FilterBy.DateRange != nil {
			problems = append(problems, checkTimestamp("filterBy.dateRange.start", c.FilterBy.DateRange.Start)...)
			problems = append(problems, checkTimestamp("filterBy.dateRange.end", c.FilterBy.DateRange.End)...)
		}
	case *ClearAuditLogs:
		problems = append(problems, checkTimestamp("olderThan", c.OlderThan)...)
	}
	return problems
}

func checkLinks(path string, links content.Links) []string {
	var problems []string
	if p := checkURL(path+".github", links.GitHub); p != "" {
		problems = append(problems, p)
	}
	if p := checkURL(path+".live", links.Live); p != "" {
		problems = append(problems, p)
	}
	return problems
}

// checkURL accepts empty values; a set value must be an absolute
// http(s) URL.
func checkURL(path, value string) string {
	if value == "" {
		return ""
	}
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("%s: must be an absolute http(s) URL", path)
	}
	return ""
}

// checkTimestamp accepts empty values; a set value must be RFC 3339.
func checkTimestamp(path, value string) []string {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		return []string{fmt.Sprintf("%s: must be an RFC 3339 timestamp", path)}
	}
	return nil
}
