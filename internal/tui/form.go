package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/sadopc/tock/internal/preset"
	"github.com/sadopc/tock/internal/sequence"
	"github.com/sadopc/tock/internal/timer"
)

// ErrCancelled is returned when the user leaves the create form.
var ErrCancelled = errors.New("cancelled")

const customChoice = ""

// createForm holds the bound values of the interactive create form.
type createForm struct {
	presets *preset.Resolver

	choice  string
	pattern string
	message string
	repeat  string
}

func newCreateForm(presets *preset.Resolver) *createForm {
	return &createForm{presets: presets, repeat: "1"}
}

func (f *createForm) form() *huh.Form {
	options := []huh.Option[string]{huh.NewOption("Custom duration or pattern", customChoice)}
	for _, p := range f.presets.All() {
		label := p.Name
		if p.Description != "" {
			label = fmt.Sprintf("%s (%s)", p.Name, p.Description)
		}
		options = append(options, huh.NewOption(label, p.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Preset").Options(options...).Value(&f.choice),
		).Title("New timer"),
		huh.NewGroup(
			huh.NewInput().
				Title("Duration or pattern").
				Placeholder("25m or (25m work, 5m rest)x4").
				Validate(f.validatePattern).
				Value(&f.pattern),
			huh.NewInput().
				Title("Repeat").
				Validate(validateRepeat).
				Value(&f.repeat),
		).WithHideFunc(func() bool { return f.choice != customChoice }),
		huh.NewGroup(
			huh.NewInput().Title("Message").Placeholder("optional").Value(&f.message),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (f *createForm) validatePattern(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("enter a duration or pattern")
	}
	if f.presets.IsSequenceLike(s) {
		if _, err := sequence.Compile(f.presets.Resolve(s)); err != nil {
			return errors.New("pattern has no phases")
		}
		return nil
	}
	if sequence.ParseDuration(s) <= 0 {
		return errors.New("not a duration, try 90s, 25m or 1h30m")
	}
	return nil
}

func validateRepeat(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New("repeat must be a whole number of at least 1")
	}
	return nil
}

// request turns the bound values into a create request.
func (f *createForm) request() timer.CreateRequest {
	req := timer.CreateRequest{Message: strings.TrimSpace(f.message), Repeat: 1}
	if f.choice != customChoice {
		req.Input = f.choice
		return req
	}
	req.Input = strings.TrimSpace(f.pattern)
	if n, err := strconv.Atoi(strings.TrimSpace(f.repeat)); err == nil && n > 0 {
		req.Repeat = n
	}
	return req
}

// RunCreateForm asks for a new timer interactively.
func RunCreateForm(presets *preset.Resolver) (timer.CreateRequest, error) {
	f := newCreateForm(presets)
	if err := f.form().Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return timer.CreateRequest{}, ErrCancelled
		}
		return timer.CreateRequest{}, err
	}
	return f.request(), nil
}
