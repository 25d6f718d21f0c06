package assistant

import (
	"errors"
	"testing"
)

func TestExtractCommand(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"type":"noop","payload":{}}`, `{"type":"noop","payload":{}}`},
		{"fenced", "```\n{\"type\":\"noop\",\"payload\":{}}\n```", `{"type":"noop","payload":{}}`},
		{"json fence", "```json\n{\"type\":\"noop\",\"payload\":{}}\n```", `{"type":"noop","payload":{}}`},
		{"surrounding prose", `Sure! Here is the command: {"type":"noop","payload":{}} Let me know.`, `{"type":"noop","payload":{}}`},
		{"nested braces", `{"type":"add_goal","payload":{"type":"shortTerm","goal":"x"}}`, `{"type":"add_goal","payload":{"type":"shortTerm","goal":"x"}}`},
		{"leading whitespace", "\n\n  {\"type\":\"noop\",\"payload\":{}}", `{"type":"noop","payload":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractCommand(tt.in)
			if err != nil {
				t.Fatalf("ExtractCommand failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractCommand_NoJSON(t *testing.T) {
	for _, in := range []string{
		"I don't have a command for that.",
		"",
		"} backwards {",
		"```\njust text\n```",
	} {
		if _, err := ExtractCommand(in); !errors.Is(err, ErrNoCommand) {
			t.Errorf("ExtractCommand(%q) error = %v, want ErrNoCommand", in, err)
		}
	}
}
