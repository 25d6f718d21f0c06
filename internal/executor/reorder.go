package executor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aychen/folio/internal/command"
	"github.com/aychen/folio/internal/content"
)

// Unmatched titles and IDs sort after everything a custom order names.
const customOrderUnranked = 999

// reorderProjects sorts the slice in place by strategy. All sorts are
// stable so equal elements keep their stored order.
func reorderProjects(projects []content.Project, strategy command.ReorderStrategy, customOrder []string) error {
	switch strategy {
	case command.StrategyFeaturedFirst:
		sort.SliceStable(projects, func(i, j int) bool {
			if projects[i].Featured != projects[j].Featured {
				return projects[i].Featured
			}
			return projects[i].Year > projects[j].Year
		})

	case command.StrategyByYearDesc:
		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].Year > projects[j].Year
		})

	case command.StrategyByYearAsc:
		sort.SliceStable(projects, func(i, j int) bool {
			return projects[i].Year < projects[j].Year
		})

	case command.StrategyByTechStack:
		sort.SliceStable(projects, func(i, j int) bool {
			if len(projects[i].Stack) != len(projects[j].Stack) {
				return len(projects[i].Stack) > len(projects[j].Stack)
			}
			return projects[i].Year > projects[j].Year
		})

	case command.StrategyByStatus:
		sort.SliceStable(projects, func(i, j int) bool {
			pi, pj := content.StatusPriority(projects[i].Status), content.StatusPriority(projects[j].Status)
			if pi != pj {
				return pi > pj
			}
			return projects[i].Year > projects[j].Year
		})

	case command.StrategyCustomOrder:
		rank := make(map[string]int, len(customOrder))
		for i, title := range customOrder {
			rank[strings.ToLower(title)] = i
		}
		sort.SliceStable(projects, func(i, j int) bool {
			return customRank(rank, projects[i].Title) < customRank(rank, projects[j].Title)
		})

	default:
		return &UnsupportedOperationError{Operation: fmt.Sprintf("reorder strategy %q", strategy)}
	}
	return nil
}

// reorderJourney sorts a timeline in place. Journey years are strings
// ("2021", "2021-2023"); lexicographic comparison orders them.
func reorderJourney(items []content.JourneyItem, strategy command.ReorderStrategy, customOrder []string) error {
	switch strategy {
	case command.StrategyByYearAsc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Year < items[j].Year
		})

	case command.StrategyByYearDesc:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Year > items[j].Year
		})

	case command.StrategyCustomOrder:
		rank := make(map[string]int, len(customOrder))
		for i, id := range customOrder {
			rank[id] = i
		}
		sort.SliceStable(items, func(i, j int) bool {
			ri, ok := rank[items[i].ID]
			if !ok {
				ri = customOrderUnranked
			}
			rj, ok := rank[items[j].ID]
			if !ok {
				rj = customOrderUnranked
			}
			return ri < rj
		})

	default:
		return &UnsupportedOperationError{Operation: fmt.Sprintf("journey reorder strategy %q", strategy)}
	}
	return nil
}

func customRank(rank map[string]int, title string) int {
	if r, ok := rank[strings.ToLower(title)]; ok {
		return r
	}
	return customOrderUnranked
}

// categoryKeywords maps an adaptive sort category to the terms scored
// against each project.
var categoryKeywords = map[string][]string{
	"ai_ml":              {"ai", "artificial intelligence", "machine learning", "ml", "neural", "prediction", "model", "algorithm", "tensorflow", "pytorch", "scikit", "data science", "analytics"},
	"data_science":       {"data", "analytics", "pipeline", "etl", "warehouse", "bigquery", "sql", "pandas", "numpy", "visualization", "dashboard", "insights"},
	"web_development":    {"web", "website", "next.js", "react", "html", "css", "javascript", "typescript", "frontend", "backend", "full stack"},
	"mobile_development": {"mobile", "app", "flutter", "react native", "ios", "android", "dart", "swift", "kotlin"},
	"backend":            {"api", "server", "database", "backend", "node.js", "python", "express", "rest", "graphql"},
	"full_stack":         {"full stack", "frontend", "backend", "database", "api", "web app"},
	"cloud_computing":    {"cloud", "aws", "gcp", "azure", "docker", "kubernetes", "deployment", "hosting"},
	"automation":         {"automation", "workflow", "pipeline", "ci/cd", "deployment", "orchestration", "airflow"},
}

// adaptiveSortProjects reorders the slice in place around the stated
// intent and returns the reasoning message recorded for the change.
func adaptiveSortProjects(projects []content.Project, c *command.AdaptiveSortProjects) (string, error) {
	switch c.Intent {
	case command.IntentPrioritizeProject:
		needle := strings.ToLower(c.TargetProject)
		idx := -1
		for i := range projects {
			title := strings.ToLower(projects[i].Title)
			if title == needle || strings.Contains(title, needle) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", &NotFoundError{Entity: "project", Match: c.TargetProject, Available: projectTitles(projects)}
		}
		target := projects[idx]
		copy(projects[1:idx+1], projects[:idx])
		projects[0] = target
		return fmt.Sprintf("Moved %q to first position as requested", target.Title), nil

	case command.IntentPrioritizeCategory:
		category := c.Category
		if category == "" {
			category = "ai_ml"
		}
		keywords := categoryKeywords[category]
		sortByScore(projects, func(p content.Project) int {
			return keywordScore(p, keywords)
		})
		return fmt.Sprintf("Prioritized %s projects based on content analysis", category), nil

	case command.IntentPrioritizeTechnology:
		sortByScore(projects, func(p content.Project) int {
			return techScore(p, c.Technologies)
		})
		return fmt.Sprintf("Prioritized projects using: %s", strings.Join(c.Technologies, ", ")), nil

	case command.IntentPrioritizeKeywords:
		sortByScore(projects, func(p content.Project) int {
			return keywordScore(p, c.Keywords)
		})
		return fmt.Sprintf("Prioritized by keywords: %s", strings.Join(c.Keywords, ", ")), nil

	case command.IntentCustomAdaptive:
		sortByScore(projects, func(p content.Project) int {
			score := len(p.Stack)
			if p.Featured {
				score += 10
			}
			return score
		})
		return "Applied custom adaptive sorting based on project complexity and features", nil

	default:
		return "", &UnsupportedOperationError{Operation: fmt.Sprintf("adaptive sort intent %q", c.Intent)}
	}
}

// sortByScore orders by descending score, breaking ties by year
// descending, stably.
func sortByScore(projects []content.Project, score func(content.Project) int) {
	scores := make([]int, len(projects))
	for i, p := range projects {
		scores[i] = score(p)
	}
	idx := make([]int, len(projects))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if scores[idx[a]] != scores[idx[b]] {
			return scores[idx[a]] > scores[idx[b]]
		}
		return projects[idx[a]].Year > projects[idx[b]].Year
	})
	sorted := make([]content.Project, len(projects))
	for i, j := range idx {
		sorted[i] = projects[j]
	}
	copy(projects, sorted)
}

// keywordScore counts keyword hits in the project's title, description,
// and stack. Keywords longer than three characters count double, and
// featured projects get a flat bonus.
func keywordScore(p content.Project, keywords []string) int {
	text := strings.ToLower(p.Title + " " + p.Description + " " + strings.Join(p.Stack, " "))
	score := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			if len(kw) > 3 {
				score += 2
			} else {
				score++
			}
		}
	}
	if p.Featured {
		score += 5
	}
	return score
}

// techScore awards points per requested technology that appears as a
// substring of any stack entry.
func techScore(p content.Project, technologies []string) int {
	score := 0
	for _, tech := range technologies {
		needle := strings.ToLower(tech)
		for _, entry := range p.Stack {
			if strings.Contains(strings.ToLower(entry), needle) {
				score += 3
				break
			}
		}
	}
	return score
}
