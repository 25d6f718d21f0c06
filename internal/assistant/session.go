package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aychen/folio/internal/command"
	"github.com/aychen/folio/internal/executor"
	"github.com/aychen/folio/internal/llm"
)

// maxHistory bounds how many conversation turns are sent to the model.
const maxHistory = 12

// Session drives one assistant conversation surface: it composes the
// prompt, calls the model, and in private mode validates and executes
// the extracted command.
type Session struct {
	llm      *llm.Client
	exec     *executor.Executor
	composer *Composer
	model    string
}

// NewSession wires a session over the given dependencies.
func NewSession(client *llm.Client, exec *executor.Executor, composer *Composer, model string) *Session {
	return &Session{llm: client, exec: exec, composer: composer, model: model}
}

// Reply is the assistant's answer to one message.
type Reply struct {
	Text    string `json:"reply"`
	Command string `json:"command,omitempty"`
	Success *bool  `json:"success,omitempty"`
}

// Handle runs one conversation turn. Public mode returns the model
// text as-is. Private mode extracts a command from the model output,
// validates it, retries once with the validation problems appended,
// and executes the result.
func (s *Session) Handle(ctx context.Context, messages []llm.Message, mode Mode) (Reply, error) {
	if len(messages) > maxHistory {
		messages = messages[len(messages)-maxHistory:]
	}

	prompt := []llm.Message{{Role: "system", Content: s.composer.BuildSystemPrompt(ctx, mode)}}
	prompt = append(prompt, messages...)

	text, err := s.llm.Complete(ctx, s.model, prompt)
	if err != nil {
		return Reply{}, fmt.Errorf("completing chat: %w", err)
	}

	if mode != ModePrivate {
		return Reply{Text: text}, nil
	}

	cmd, err := s.resolveCommand(ctx, prompt, text)
	if err != nil {
		var verr *command.ValidationError
		if errors.As(err, &verr) {
			return Reply{Text: "I could not produce a valid command: " + verr.Error()}, nil
		}
		if errors.Is(err, ErrNoCommand) {
			// The model answered in prose; pass it through.
			return Reply{Text: text}, nil
		}
		return Reply{}, err
	}

	res, execErr := s.exec.Execute(ctx, cmd)
	reply := Reply{
		Text:    res.Message,
		Command: command.Summary(cmd),
		Success: &res.Success,
	}
	if execErr != nil {
		slog.Info("command execution failed", "command", cmd.Type(), "error", execErr)
	}
	return reply, nil
}

// resolveCommand extracts and validates the command in text, giving
// the model one correction pass when validation fails.
func (s *Session) resolveCommand(ctx context.Context, prompt []llm.Message, text string) (command.Command, error) {
	raw, err := ExtractCommand(text)
	if err != nil {
		return nil, err
	}

	cmd, err := command.Validate(raw)
	if err == nil {
		return cmd, nil
	}
	var verr *command.ValidationError
	if !errors.As(err, &verr) {
		return nil, err
	}

	slog.Debug("command failed validation, retrying", "problems", verr.Problems)
	retry := append(append([]llm.Message{}, prompt...),
		llm.Message{Role: "assistant", Content: text},
		llm.Message{Role: "user", Content: "That command failed validation: " + verr.Error() + ". Respond with only the corrected JSON command."},
	)

	text, err = s.llm.Complete(ctx, s.model, retry)
	if err != nil {
		return nil, fmt.Errorf("completing correction: %w", err)
	}
	raw, err = ExtractCommand(text)
	if err != nil {
		return nil, verr
	}
	return command.Validate(raw)
}
