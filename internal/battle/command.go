package battle

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is the input event for PlayerTurn. Attack and Target are
// zero-based indexes into the attacker's attacks and the target side.
type Command struct {
	Attack int
	Target int
	Pass   bool
}

// ParseCommand parses one line of player input:
//
//	attack <attack#> <target#>   (alias: a; numbers are 1-based)
//	pass                         (alias: p)
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty input", ErrInvalidCommand)
	}

	switch fields[0] {
	case "pass", "p":
		if len(fields) != 1 {
			return Command{}, fmt.Errorf("%w: pass takes no arguments", ErrInvalidCommand)
		}
		return Command{Pass: true}, nil

	case "attack", "a":
		if len(fields) != 3 {
			return Command{}, fmt.Errorf("%w: usage: attack <attack#> <target#>", ErrInvalidCommand)
		}
		atk, err := parseIndex(fields[1])
		if err != nil {
			return Command{}, fmt.Errorf("%w: attack number: %v", ErrInvalidCommand, err)
		}
		target, err := parseIndex(fields[2])
		if err != nil {
			return Command{}, fmt.Errorf("%w: target number: %v", ErrInvalidCommand, err)
		}
		return Command{Attack: atk, Target: target}, nil

	default:
		return Command{}, fmt.Errorf("%w: unknown command %q", ErrInvalidCommand, fields[0])
	}
}

// parseIndex converts a 1-based number to a zero-based index.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be at least 1, got %d", n)
	}
	return n - 1, nil
}

// String formats the command in ParseCommand syntax.
func (c Command) String() string {
	if c.Pass {
		return "pass"
	}
	return fmt.Sprintf("attack %d %d", c.Attack+1, c.Target+1)
}
