// Package prompts holds the instructions and response specifications sent
// with each model call. Instructions may be overridden per stage; the
// response specifications are fixed because the parsers depend on them.
package prompts

import (
	"fmt"
	"strings"
)

// Library composes prompts from instructions and response specifications.
type Library struct {
	instructions map[Stage]string
}

// New returns a Library using the built-in instructions, replaced by any
// non-empty entry in overrides. Keys must be valid stage names.
func New(overrides map[string]string) (*Library, error) {
	lib := &Library{instructions: make(map[Stage]string, len(instructions))}
	for stage, text := range instructions {
		lib.instructions[stage] = text
	}

	for name, text := range overrides {
		stage, err := ParseStage(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, name)
		}
		if text = strings.TrimSpace(text); text != "" {
			lib.instructions[stage] = text
		}
	}

	return lib, nil
}

// Instructions returns the instructions for stage.
func (l *Library) Instructions(stage Stage) string {
	return l.instructions[stage]
}

// Spec returns the response specification for stage.
func (l *Library) Spec(stage Stage) string {
	return specs[stage]
}

// Compose joins the stage instructions, the response specification, and
// any context sections in order.
func (l *Library) Compose(stage Stage, sections ...string) string {
	var sb strings.Builder
	sb.WriteString(l.Instructions(stage))
	sb.WriteString("\n\n")
	sb.WriteString(l.Spec(stage))

	for _, s := range sections {
		sb.WriteString("\n\n")
		sb.WriteString(s)
	}

	return sb.String()
}
