package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

var (
	// ErrPromptAborted is returned when the user cancels a prompt (ctrl+c, esc).
	ErrPromptAborted = errors.New("prompt aborted")
	// ErrNotInteractive is returned by TerminalPrompter when stdin is not a terminal.
	ErrNotInteractive = errors.New("interactive prompt needs a terminal, use `yz get <category>/<name>` instead")
)

// filterThreshold is the option count above which Select turns on type-to-filter.
const filterThreshold = 10

// ConfirmOption configures a Confirm prompt.
type ConfirmOption func(*confirmConfig)

type confirmConfig struct {
	affirmative string
	negative    string
	description string
}

// WithLabels sets the button labels of a Confirm prompt.
func WithLabels(affirmative, negative string) ConfirmOption {
	return func(c *confirmConfig) {
		c.affirmative = affirmative
		c.negative = negative
	}
}

// WithDescription adds a line of text under the Confirm title.
func WithDescription(desc string) ConfirmOption {
	return func(c *confirmConfig) {
		c.description = desc
	}
}

func newConfirmConfig(opts []ConfirmOption) confirmConfig {
	cfg := confirmConfig{affirmative: "Yes", negative: "No"}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Confirm asks a yes/no question. The negative answer is preselected.
func Confirm(title string, opts ...ConfirmOption) (bool, error) {
	cfg := newConfirmConfig(opts)

	var result bool
	field := huh.NewConfirm().
		Title(title).
		Description(cfg.description).
		Affirmative(cfg.affirmative).
		Negative(cfg.negative).
		Value(&result)

	if err := runForm(field); err != nil {
		return false, err
	}
	return result, nil
}

// SelectOption is one entry of a Select prompt.
type SelectOption[T comparable] struct {
	Label string
	Value T
}

// Select shows a single-choice list and returns the chosen value. Long lists
// (template names of a big category) can be filtered by typing.
func Select[T comparable](title string, options []SelectOption[T]) (T, error) {
	var result T
	if len(options) == 0 {
		return result, fmt.Errorf("%s: no options to choose from", title)
	}

	huhOpts := make([]huh.Option[T], len(options))
	for i, opt := range options {
		huhOpts[i] = huh.NewOption(opt.Label, opt.Value)
	}

	field := huh.NewSelect[T]().
		Title(title).
		Options(huhOpts...).
		Filtering(len(options) > filterThreshold).
		Value(&result)
	if len(options) > filterThreshold {
		field = field.Height(filterThreshold + 2)
	}

	if err := runForm(field); err != nil {
		return result, err
	}
	return result, nil
}

func runForm(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(Theme()).
		WithKeyMap(KeyMap()).
		WithOutput(os.Stderr)
	return promptError(form.Run())
}

// Prompter is the interactive surface commands depend on. Tests replace it
// with scripted answers.
type Prompter interface {
	Select(title string, options []SelectOption[string]) (string, error)
	Confirm(title string, opts ...ConfirmOption) (bool, error)
}

// TerminalPrompter renders prompts with huh on a real terminal.
type TerminalPrompter struct{}

func (TerminalPrompter) Select(title string, options []SelectOption[string]) (string, error) {
	if !stdinIsTerminal() {
		return "", ErrNotInteractive
	}
	return Select(title, options)
}

func (TerminalPrompter) Confirm(title string, opts ...ConfirmOption) (bool, error) {
	if !stdinIsTerminal() {
		return false, ErrNotInteractive
	}
	return Confirm(title, opts...)
}

var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func promptError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrPromptAborted
	}
	return err
}
