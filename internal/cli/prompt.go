package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// choice is one option of a select prompt.
type choice struct {
	Label    string
	Value    string
	Selected bool
}

// prompter asks the user for input. Returning huh.ErrUserAborted ends the
// wizard with progress kept.
type prompter interface {
	Input(title, placeholder string) (string, error)
	Text(title string) (string, error)
	Select(title string, options []choice) (string, error)
	MultiSelect(title string, options []choice, limit int) ([]string, error)
	Confirm(title string) (bool, error)
}

// huhPrompter renders every prompt as a single-field huh form.
type huhPrompter struct {
	ctx context.Context
}

func (p huhPrompter) run(field huh.Field) error {
	return newForm(huh.NewGroup(field)).RunWithContext(p.ctx)
}

func (p huhPrompter) Input(title, placeholder string) (string, error) {
	var v string
	err := p.run(huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&v).
		Validate(requireText))
	return strings.TrimSpace(v), err
}

func (p huhPrompter) Text(title string) (string, error) {
	var v string
	err := p.run(huh.NewText().
		Title(title).
		CharLimit(500).
		Value(&v).
		Validate(requireText))
	return strings.TrimSpace(v), err
}

func (p huhPrompter) Select(title string, options []choice) (string, error) {
	var v string
	err := p.run(huh.NewSelect[string]().
		Title(title).
		Options(huhOptions(options)...).
		Value(&v))
	return v, err
}

func (p huhPrompter) MultiSelect(title string, options []choice, limit int) ([]string, error) {
	var v []string
	err := p.run(huh.NewMultiSelect[string]().
		Title(title).
		Options(huhOptions(options)...).
		Limit(limit).
		Value(&v))
	return v, err
}

func (p huhPrompter) Confirm(title string) (bool, error) {
	v := true
	err := p.run(huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&v))
	return v, err
}

func huhOptions(options []choice) []huh.Option[string] {
	out := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		out = append(out, huh.NewOption(o.Label, o.Value).Selected(o.Selected))
	}
	return out
}

var errEmptyAnswer = errors.New("please enter something")

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errEmptyAnswer
	}
	return nil
}
