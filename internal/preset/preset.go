// Package preset maps named sequence templates such as "pomodoro" to their
// patterns and decides whether user input is a plain duration or a sequence.
package preset

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Preset is a named sequence template.
type Preset struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Description string `yaml:"description"`
}

// Defaults are the built-in presets.
var Defaults = []Preset{
	{Name: "pomodoro", Pattern: "(25m work, 5m rest)x4", Description: "Classic pomodoro: four 25 minute blocks"},
	{Name: "pomodoro-long", Pattern: "((25m work, 5m rest)x3, 25m work, 15m 'long rest')x2", Description: "Two pomodoro sets with long rests"},
	{Name: "52-17", Pattern: "(52m work, 17m rest)x3", Description: "52 minutes on, 17 off"},
	{Name: "quick", Pattern: "(15m work, 3m rest)x4", Description: "Short focus blocks"},
}

var multRe = regexp.MustCompile(`\)x\d+`)

// Resolver looks up presets by name. It is immutable after construction.
type Resolver struct {
	byName map[string]Preset
	names  []string
}

// NewResolver builds a resolver. Later presets replace earlier ones with the
// same name, so user presets can be appended after Defaults.
func NewResolver(presets []Preset) *Resolver {
	r := &Resolver{byName: make(map[string]Preset)}
	for _, p := range presets {
		key := normalize(p.Name)
		if key == "" || strings.TrimSpace(p.Pattern) == "" {
			continue
		}
		if _, exists := r.byName[key]; !exists {
			r.names = append(r.names, key)
		}
		p.Name = key
		r.byName[key] = p
	}
	sort.Strings(r.names)
	return r
}

// Lookup returns the preset called name.
func (r *Resolver) Lookup(name string) (Preset, bool) {
	p, ok := r.byName[normalize(name)]
	return p, ok
}

// Resolve returns the pattern of the preset called nameOrPattern, or the
// input unchanged when no preset matches. Preset patterns are not resolved
// again.
func (r *Resolver) Resolve(nameOrPattern string) string {
	if p, ok := r.Lookup(nameOrPattern); ok {
		return p.Pattern
	}
	return nameOrPattern
}

// IsSequenceLike reports whether text should be handled as a sequence rather
// than a single duration: a preset name, or anything with a group, a comma or
// a group multiplier. "25m work" is a plain duration.
func (r *Resolver) IsSequenceLike(text string) bool {
	if _, ok := r.Lookup(text); ok {
		return true
	}
	return strings.ContainsAny(text, "(,") || multRe.MatchString(text)
}

// All returns the presets sorted by name.
func (r *Resolver) All() []Preset {
	out := make([]Preset, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.byName[n])
	}
	return out
}

func normalize(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

// LoadFile reads user presets from a YAML file of the form
//
//	presets:
//	  - name: deep
//	    pattern: "(90m focus, 20m rest)x2"
//	    description: Long focus blocks
//
// A missing file yields no presets.
func LoadFile(fs afero.Fs, path string) ([]Preset, error) {
	if path == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}

	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	for i, p := range f.Presets {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("parse presets %s: entry %d has no name", path, i+1)
		}
		if strings.TrimSpace(p.Pattern) == "" {
			return nil, fmt.Errorf("parse presets %s: preset %q has no pattern", path, p.Name)
		}
	}
	return f.Presets, nil
}

// Load returns Defaults followed by the presets in path.
func Load(fs afero.Fs, path string) (*Resolver, error) {
	extra, err := LoadFile(fs, path)
	if err != nil {
		return nil, err
	}
	all := make([]Preset, 0, len(Defaults)+len(extra))
	all = append(all, Defaults...)
	all = append(all, extra...)
	return NewResolver(all), nil
}
