package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/battle/internal/battle"
)

// Scenario is a scripted battle with expected results.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Content is the battle content file. Relative paths are resolved
	// against the scenario file's directory by LoadScenario.
	Content string `yaml:"content"`

	// FrameDT is the fixed frame delta in seconds.
	FrameDT float64 `yaml:"frame_dt"`

	// Frames caps the run. The run also ends on the frame a winner is set.
	Frames int `yaml:"frames"`

	// Inputs are delivered before the frame they name (1-based).
	Inputs []InputStep `yaml:"inputs,omitempty"`

	Expect Expect `yaml:"expect"`
}

// InputStep is one player command.
type InputStep struct {
	Frame   int    `yaml:"frame"`
	Command string `yaml:"command"`

	// Rejected marks an input the current node must refuse.
	Rejected bool `yaml:"rejected,omitempty"`

	parsed battle.Command
}

// Expect lists checks on the finished run. Zero-valued fields are skipped.
type Expect struct {
	Node        string         `yaml:"node,omitempty"`
	Winner      string         `yaml:"winner,omitempty"`
	Frames      int            `yaml:"frames,omitempty"`
	HistoryLen  *int           `yaml:"history_len,omitempty"`
	Health      map[string]int `yaml:"health,omitempty"`
	LogContains []string       `yaml:"log_contains,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected, and the content path is resolved relative to the file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.Content != "" && !filepath.IsAbs(s.Content) {
		s.Content = filepath.Join(filepath.Dir(path), s.Content)
	}
	if _, err := os.Stat(s.Content); err != nil {
		return nil, fmt.Errorf("invalid scenario: content file not found: %s", s.Content)
	}
	return s, nil
}

// ParseScenario parses and validates scenario YAML without touching the
// file system.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Content == "" {
		return fmt.Errorf("content is required")
	}
	if s.FrameDT <= 0 {
		return fmt.Errorf("frame_dt must be positive")
	}
	if s.Frames <= 0 {
		return fmt.Errorf("frames must be positive")
	}

	for i := range s.Inputs {
		in := &s.Inputs[i]
		if in.Frame < 1 || in.Frame > s.Frames {
			return fmt.Errorf("inputs[%d]: frame must be between 1 and %d", i, s.Frames)
		}
		if i > 0 && in.Frame < s.Inputs[i-1].Frame {
			return fmt.Errorf("inputs[%d]: frames must not decrease", i)
		}
		cmd, err := battle.ParseCommand(in.Command)
		if err != nil {
			return fmt.Errorf("inputs[%d]: %w", i, err)
		}
		in.parsed = cmd
	}

	switch s.Expect.Winner {
	case "", battle.PlayersWin.String(), battle.EnemiesWin.String():
	default:
		return fmt.Errorf("expect.winner: must be %q or %q", battle.PlayersWin, battle.EnemiesWin)
	}
	if s.Expect.HistoryLen != nil && *s.Expect.HistoryLen < 0 {
		return fmt.Errorf("expect.history_len: must be non-negative")
	}
	return nil
}
