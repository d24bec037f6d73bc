package content

import (
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Error codes for content loading.
const (
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeFormat       = "E008" // Unsupported file extension
	ErrCodeParse        = "E009" // YAML or CUE syntax/type error
	ErrCodeNoCombatants = "E201" // A side has no characters
	ErrCodeName         = "E202" // Missing or duplicate character name
	ErrCodeHealth       = "E203" // Non-positive health
	ErrCodeAttack       = "E204" // Bad or missing attack
	ErrCodeMana         = "E205" // Bad mana settings
	ErrCodeFirst        = "E206" // Unknown starting side
	ErrCodeThink        = "E207" // Negative enemy think time
)

// LoadError is a content problem, optionally with a source position.
type LoadError struct {
	Code    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	prefix := e.Code
	if e.Field != "" {
		prefix += " " + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), prefix, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// fromCUE converts a CUE error into LoadErrors that keep the position.
func fromCUE(err error) []error {
	var out []error
	for _, e := range cueerrors.Errors(err) {
		le := &LoadError{Code: ErrCodeParse, Message: e.Error()}
		if pos := cueerrors.Positions(e); len(pos) > 0 {
			le.Pos = pos[0]
		}
		out = append(out, le)
	}
	if len(out) == 0 {
		out = append(out, &LoadError{Code: ErrCodeParse, Message: err.Error()})
	}
	return out
}
