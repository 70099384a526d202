// Package preset defines the one-click roll presets offered by the consoles:
// paged 2d6 modifier buttons and the single-die range.
package preset

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ModifierPage is one page of consecutive 2d6 modifiers.
//
// Invariant: From <= To and Title is non-empty.
type ModifierPage struct {
	Title string `yaml:"title" json:"title"`
	From  int    `yaml:"from" json:"from"`
	To    int    `yaml:"to" json:"to"`
}

// Modifiers returns every modifier on the page in ascending order.
//
// Postcondition: len(result) == To-From+1.
func (p ModifierPage) Modifiers() []int {
	out := make([]int, 0, p.To-p.From+1)
	for m := p.From; m <= p.To; m++ {
		out = append(out, m)
	}
	return out
}

// DieRange bounds the single-die selector: 1d<Min> through 1d<Max>.
type DieRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Set is a validated collection of presets.
type Set struct {
	ModifierPages []ModifierPage `yaml:"modifier_pages" json:"modifierPages"`
	SingleDie     DieRange       `yaml:"single_die" json:"singleDie"`
}

// Default returns the stock presets: modifiers +3 through +100 in pages of
// twenty (the first page starts at +3) and single dice 1d1 through 1d100.
//
// Postcondition: Returns a Set for which Validate returns nil.
func Default() *Set {
	return &Set{
		ModifierPages: []ModifierPage{
			{Title: "+3〜+20", From: 3, To: 20},
			{Title: "+21〜+40", From: 21, To: 40},
			{Title: "+41〜+60", From: 41, To: 60},
			{Title: "+61〜+80", From: 61, To: 80},
			{Title: "+81〜+100", From: 81, To: 100},
		},
		SingleDie: DieRange{Min: 1, Max: 100},
	}
}

// Load reads and validates a presets YAML file. An empty path yields Default.
//
// Postcondition: Returns a valid Set or a non-nil error.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing presets %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates presets from YAML.
//
// Postcondition: Returns a valid Set or a non-nil error.
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every page and the die range, reporting all violations.
func (s *Set) Validate() error {
	var errs []string
	if len(s.ModifierPages) == 0 {
		errs = append(errs, "at least one modifier page is required")
	}
	for i, p := range s.ModifierPages {
		if strings.TrimSpace(p.Title) == "" {
			errs = append(errs, fmt.Sprintf("modifier_pages[%d].title must not be empty", i))
		}
		if p.From > p.To {
			errs = append(errs, fmt.Sprintf("modifier_pages[%d]: from %d exceeds to %d", i, p.From, p.To))
		}
	}
	if s.SingleDie.Min < 1 {
		errs = append(errs, fmt.Sprintf("single_die.min must be >= 1, got %d", s.SingleDie.Min))
	}
	if s.SingleDie.Max < s.SingleDie.Min {
		errs = append(errs, fmt.Sprintf("single_die.max %d is below min %d", s.SingleDie.Max, s.SingleDie.Min))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Pages returns all modifier pages in display order.
func (s *Set) Pages() []ModifierPage {
	out := make([]ModifierPage, len(s.ModifierPages))
	copy(out, s.ModifierPages)
	return out
}

// Page returns page i, clamping i into the valid range.
//
// Precondition: s is valid (at least one page).
func (s *Set) Page(i int) ModifierPage {
	i = max(0, min(i, len(s.ModifierPages)-1))
	return s.ModifierPages[i]
}

// Contains reports whether modifier appears on any page.
func (s *Set) Contains(modifier int) bool {
	for _, p := range s.ModifierPages {
		if modifier >= p.From && modifier <= p.To {
			return true
		}
	}
	return false
}

// SingleDieRange returns the inclusive bounds of the single-die selector.
func (s *Set) SingleDieRange() (lo, hi int) {
	return s.SingleDie.Min, s.SingleDie.Max
}
