package ports

import "time"

// Choice is one option of a select prompt.
type Choice struct {
	Label string
	Value int64
}

// Validator checks a raw answer; a non-nil error is shown to the user.
type Validator func(answer string) error

// TextPrompt describes a single line question.
type TextPrompt struct {
	Message     string
	Default     string
	Suggestions []string
	Secret      bool
	Validate    Validator
	// Filter transforms the accepted answer before it is returned, e.g.
	// normalizing an application name.
	Filter func(string) string
}

// NumberPrompt describes a numeric question. Answers that do not parse as a
// finite number are rejected before Validate runs.
type NumberPrompt struct {
	Message  string
	Validate func(v float64) error
}

// Prompter asks the user questions. Implementations return domain.ErrCancelled
// when the user backs out.
type Prompter interface {
	Select(message string, choices []Choice) (int64, error)
	MultiSelect(message string, choices []Choice) ([]int64, error)
	Confirm(message string, def bool) (bool, error)
	Text(p TextPrompt) (string, error)
	Number(p NumberPrompt) (float64, error)
	Date(message string) (time.Time, error)

	// Say prints an informational line between prompts.
	Say(format string, args ...any)
}
