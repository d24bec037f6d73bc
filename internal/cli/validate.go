package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/battle/internal/content"
)

// ValidationResult holds validation results for every file checked.
type ValidationResult struct {
	Valid bool         `json:"valid"`
	Files []FileResult `json:"files"`
}

// FileResult is the outcome for one content file.
type FileResult struct {
	Path    string            `json:"path"`
	Valid   bool              `json:"valid"`
	Name    string            `json:"name,omitempty"`
	Players int               `json:"players,omitempty"`
	Enemies int               `json:"enemies,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one content problem.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <content>...",
		Short: "Validate battle content files",
		Long: `Validate YAML or CUE battle content without playing it.

Every problem in a file is reported, not only the first. Exit code 1 means
at least one file is invalid; exit code 2 means a file could not be read.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	result := ValidationResult{Valid: true}
	missing := 0
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		fr := validateFile(path)
		if !fr.Valid {
			result.Valid = false
			if len(fr.Errors) == 1 && fr.Errors[0].Code == content.ErrCodeNotFound {
				missing++
			}
		}
		result.Files = append(result.Files, fr)
	}

	var text strings.Builder
	for _, fr := range result.Files {
		if fr.Valid {
			fmt.Fprintf(&text, "✓ %s: %s (%d players, %d enemies)\n", fr.Path, fr.Name, fr.Players, fr.Enemies)
			continue
		}
		fmt.Fprintf(&text, "✗ %s\n", fr.Path)
		for _, e := range fr.Errors {
			switch {
			case e.Line > 0 && e.Field != "":
				fmt.Fprintf(&text, "  line %d: %s %s: %s\n", e.Line, e.Code, e.Field, e.Message)
			case e.Line > 0:
				fmt.Fprintf(&text, "  line %d: %s: %s\n", e.Line, e.Code, e.Message)
			case e.Field != "":
				fmt.Fprintf(&text, "  %s %s: %s\n", e.Code, e.Field, e.Message)
			default:
				fmt.Fprintf(&text, "  %s: %s\n", e.Code, e.Message)
			}
		}
	}
	if result.Valid {
		return formatter.Success(result, text.String())
	}
	if err := formatter.Error(ErrCodeInvalidContent, "validation failed", result, text.String()); err != nil {
		return err
	}

	switch {
	case missing > 0:
		return NewExitError(ExitCommandError, fmt.Sprintf("%d content file(s) not found", missing))
	default:
		return NewExitError(ExitFailure, "validation failed")
	}
}

func validateFile(path string) FileResult {
	fr := FileResult{Path: path}
	c, err := content.Load(path)
	if err == nil {
		fr.Valid = true
		fr.Name = c.Name
		fr.Players = len(c.Roster.Players)
		fr.Enemies = len(c.Roster.Enemies)
		return fr
	}

	for _, e := range flattenErrors(err) {
		var le *content.LoadError
		if !errors.As(e, &le) {
			fr.Errors = append(fr.Errors, ValidationError{Code: content.ErrCodeParse, Message: e.Error()})
			continue
		}
		ve := ValidationError{Code: le.Code, Field: le.Field, Message: le.Message}
		if le.Pos.IsValid() {
			ve.Line = le.Pos.Line()
		}
		fr.Errors = append(fr.Errors, ve)
	}
	return fr
}

// flattenErrors expands errors.Join trees into their leaves.
func flattenErrors(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flattenErrors(e)...)
		}
		return out
	}
	return []error{err}
}
