package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/battle/internal/battle"
	"github.com/roach88/battle/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	BattleID string // optional - specific battle only
}

// ReplayBattleResult holds the replay result for a single battle.
type ReplayBattleResult struct {
	BattleID  string   `json:"battle_id"`
	Name      string   `json:"name"`
	Content   string   `json:"content"`
	Snapshots int      `json:"snapshots"`
	Intact    bool     `json:"intact"`
	Problem   string   `json:"problem,omitempty"`
	Winner    string   `json:"winner,omitempty"`
	States    []string `json:"states,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Battles   []ReplayBattleResult `json:"battles"`
	AllIntact bool                 `json:"all_intact"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Read back and verify journaled battles",
		Long: `Read battles recorded by "battle run --db" and verify their snapshots.

Every snapshot is re-hashed and the sequence is checked for gaps. With
--battle the recorded states of that battle are printed in order.

Exit codes:
  0 - All battles are intact
  1 - A snapshot is missing or does not match its hash
  2 - Command error (database not found, unknown battle, etc.)

Examples:
  battle replay --db ./battle.db
  battle replay --db ./battle.db --battle 0192...
  battle replay --db ./battle.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Env.DB, "path to SQLite journal (env BATTLE_DB)")
	cmd.Flags().StringVar(&opts.BattleID, "battle", "", "replay specific battle only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	if opts.Database == "" {
		return NewExitError(ExitCommandError, "--db is required")
	}
	if _, err := os.Stat(opts.Database); err != nil {
		return WrapExitError(ExitCommandError, "database not found", err)
	}

	logger := setupLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx, cancel := signalContext(cmd)
	defer cancel()

	j, err := journal.Open(opts.Database, journal.WithLogger(logger))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer j.Close()

	var battles []journal.Battle
	if opts.BattleID != "" {
		b, err := j.Battle(ctx, opts.BattleID)
		if errors.Is(err, journal.ErrBattleNotFound) {
			return WrapExitError(ExitCommandError, "unknown battle", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read battle", err)
		}
		battles = []journal.Battle{b}
	} else {
		battles, err = j.Battles(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list battles", err)
		}
	}

	result := ReplayResult{Battles: []ReplayBattleResult{}, AllIntact: true}
	for _, b := range battles {
		formatter.VerboseLog("Verifying battle %s (%d snapshots)", b.ID, b.Snapshots)
		br := ReplayBattleResult{
			BattleID:  b.ID,
			Name:      b.Name,
			Content:   b.ContentPath,
			Snapshots: b.Snapshots,
			Intact:    true,
		}

		snaps, err := j.Verify(ctx, b.ID)
		var integrity *journal.IntegrityError
		switch {
		case errors.As(err, &integrity):
			br.Intact = false
			br.Problem = integrity.Error()
			result.AllIntact = false
		case err != nil:
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read battle %s", b.ID), err)
		default:
			states, err := journal.Decode(snaps, decodeState)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("failed to decode battle %s", b.ID), err)
			}
			if len(states) > 0 {
				br.Winner = states[len(states)-1].Winner.String()
			}
			if opts.BattleID != "" {
				for i, s := range states {
					br.States = append(br.States, fmt.Sprintf("seq=%d %s log=%q", i, s.Summary(), s.Log))
				}
			}
		}
		result.Battles = append(result.Battles, br)
	}

	if result.AllIntact {
		return formatter.Success(result, replayText(result))
	}
	if err := formatter.Error(ErrCodeCorruptJournal, "journal integrity check failed", result, replayText(result)); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "journal integrity check failed")
}

func decodeState(data []byte) (*battle.State, error) {
	var s battle.State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func replayText(result ReplayResult) string {
	if len(result.Battles) == 0 {
		return "No battles found in database.\n"
	}

	var b strings.Builder
	for _, br := range result.Battles {
		status := "✓"
		if !br.Intact {
			status = "✗"
		}
		outcome := br.Winner
		if outcome == "" {
			outcome = "unfinished"
		}
		fmt.Fprintf(&b, "%s %s  %s  %d snapshots  %s\n", status, br.BattleID, br.Name, br.Snapshots, outcome)
		if br.Problem != "" {
			fmt.Fprintf(&b, "  %s\n", br.Problem)
		}
		for _, line := range br.States {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}
