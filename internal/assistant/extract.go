package assistant

import (
	"errors"
	"strings"
)

// ErrNoCommand is returned when a model response contains no JSON
// object at all.
var ErrNoCommand = errors.New("no command found in response")

// ExtractCommand pulls the JSON command out of a model response.
// Models wrap output in markdown fences or surround it with prose more
// often than not, so this strips fences and takes the outermost brace
// pair. The result is a candidate only; validation happens separately.
func ExtractCommand(text string) ([]byte, error) {
	s := strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, ErrNoCommand
	}
	return []byte(s[start : end+1]), nil
}
