package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/battle/internal/battle"
	"github.com/roach88/battle/internal/content"
	"github.com/roach88/battle/internal/director"
	"github.com/roach88/battle/internal/journal"
	"github.com/roach88/battle/internal/loop"
	"github.com/roach88/battle/internal/render"
	"github.com/roach88/battle/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database     string
	Script       string
	FPS          int
	MaxFrames    int64
	HistoryLimit int
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Name     string `json:"name"`
	Winner   string `json:"winner,omitempty"`
	Round    int    `json:"round"`
	Frames   int64  `json:"frames"`
	Changes  int64  `json:"changes"`
	History  int    `json:"history"`
	BattleID string `json:"battle_id,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <content>",
		Short: "Play a battle",
		Long: `Play a battle from a YAML or CUE content file.

Commands are read one per line from --script, or from stdin when no script
is given, and handed to the party member whose turn it is:

  attack <attack#> <target#>   (alias: a)
  pass                         (alias: p)

With --db every state change is written to a SQLite journal that
"battle replay" can read back.

Examples:
  battle run ./battles/ambush.yaml
  battle run ./battles/ambush.cue --script moves.txt --fps 0
  battle run ./battles/ambush.yaml --db ./battle.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBattle(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Env.DB, "path to SQLite journal (optional, env BATTLE_DB)")
	cmd.Flags().StringVar(&opts.Script, "script", "", "file with one command per line (default: stdin)")
	cmd.Flags().IntVar(&opts.FPS, "fps", rootOpts.Env.FPS, "frames per second; 0 runs frames back to back")
	cmd.Flags().Int64Var(&opts.MaxFrames, "frames", rootOpts.Env.MaxFrames, "stop after this many frames; 0 means no limit")
	cmd.Flags().IntVar(&opts.HistoryLimit, "history", rootOpts.Env.HistoryLimit, "keep at most this many past states; 0 keeps all")

	return cmd
}

func runBattle(opts *RunOptions, path string, cmd *cobra.Command) error {
	logger := setupLogging(opts.RootOptions)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	c, err := content.Load(path)
	if err != nil {
		return contentExitError(err)
	}
	formatter.VerboseLog("Loaded %s: %d players, %d enemies", c.Name, len(c.Roster.Players), len(c.Roster.Enemies))

	var screen io.Writer = cmd.OutOrStdout()
	if formatter.JSON() {
		screen = io.Discard
	}
	errW := cmd.ErrOrStderr()
	d, err := battle.Build(c.Roster, render.NewText(screen), battle.Options{
		Logger: logger,
		Store:  []store.Option{store.WithHistoryLimit(opts.HistoryLimit)},
		Director: []director.Option{director.WithErrorHandler(func(err error) {
			fmt.Fprintln(errW, err)
		})},
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build battle", err)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	result := RunResult{Name: c.Name}
	var rec *journal.Recorder[*battle.State]
	if opts.Database != "" {
		j, err := journal.Open(opts.Database, journal.WithLogger(logger))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()

		result.BattleID, err = j.BeginBattle(ctx, c.Name, path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start journal", err)
		}
		rec = journal.NewRecorder[*battle.State](ctx, j, result.BattleID, nil)
		if err := rec.Record(d.StoreState()); err != nil {
			return WrapExitError(ExitCommandError, "failed to write journal", err)
		}
		d.AddStoreSubscriber(rec)
	}

	feed, err := openFeed(ctx, opts, cmd)
	if err != nil {
		return err
	}

	target := &feedTarget{director: d, feed: feed}
	lp := loop.New[battle.Command](target,
		loop.WithFrameRate(opts.FPS),
		loop.WithMaxFrames(opts.MaxFrames),
		loop.WithStopWhen(func() bool { return d.StoreState().Over() }),
		loop.WithLogger(logger),
	)
	target.loop = lp

	if err := lp.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "battle loop failed", err)
	}

	if rec != nil && rec.Err() != nil {
		return WrapExitError(ExitFailure, "journal write failed", rec.Err())
	}

	final := d.StoreState()
	result.Winner = final.Winner.String()
	result.Round = final.Round
	result.Frames = lp.Frames()
	result.Changes = d.StoreChanges()
	result.History = len(d.StoreHistory())

	var text strings.Builder
	if final.Over() {
		fmt.Fprintf(&text, "%s win in round %d.\n", final.Winner, final.Round)
	} else {
		fmt.Fprintf(&text, "Battle unfinished after %d frames.\n", result.Frames)
	}
	if result.BattleID != "" {
		fmt.Fprintf(&text, "Journal: %s (battle %s)\n", opts.Database, result.BattleID)
	}
	return formatter.Success(result, text.String())
}

// signalContext returns a context cancelled on SIGINT/SIGTERM or when the
// command's own context ends.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// openFeed starts reading player commands. A script is read completely up
// front so that runs are reproducible; stdin is read as it arrives.
func openFeed(ctx context.Context, opts *RunOptions, cmd *cobra.Command) (<-chan battle.Command, error) {
	errW := cmd.ErrOrStderr()
	if opts.Script != "" {
		data, err := os.ReadFile(opts.Script)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to read script", err)
		}
		cmds := parseLines(strings.NewReader(string(data)), errW)
		feed := make(chan battle.Command, len(cmds))
		for _, c := range cmds {
			feed <- c
		}
		close(feed)
		return feed, nil
	}

	return streamCommands(ctx, cmd.InOrStdin(), errW), nil
}

// streamCommands parses r line by line onto the returned channel, which is
// closed at EOF or once ctx is done. A line the loop never asks for does
// not keep the reader alive after ctx ends.
func streamCommands(ctx context.Context, r io.Reader, errW io.Writer) <-chan battle.Command {
	feed := make(chan battle.Command)
	go func() {
		defer close(feed)
		scanner := bufio.NewScanner(r)
		for n := 1; scanner.Scan(); n++ {
			c, ok := parseLine(n, scanner.Text(), errW)
			if !ok {
				continue
			}
			select {
			case feed <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return feed
}

func parseLines(r io.Reader, errW io.Writer) []battle.Command {
	var out []battle.Command
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		if c, ok := parseLine(n, scanner.Text(), errW); ok {
			out = append(out, c)
		}
	}
	return out
}

// parseLine skips blank lines and # comments and reports bad commands.
func parseLine(n int, line string, errW io.Writer) (battle.Command, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return battle.Command{}, false
	}
	c, err := battle.ParseCommand(line)
	if err != nil {
		fmt.Fprintf(errW, "line %d: %v\n", n, err)
		return battle.Command{}, false
	}
	return c, true
}

// feedTarget hands the director one command whenever a player is waiting
// and nothing is queued. When the feed runs dry on a player's turn the loop
// is stopped.
type feedTarget struct {
	director *battle.Director
	feed     <-chan battle.Command
	loop     *loop.Loop[battle.Command]
}

func (t *feedTarget) HandleInput(cmd battle.Command) error {
	return t.director.HandleInput(cmd)
}

func (t *feedTarget) OnFrame(dt float64) error {
	err := t.director.OnFrame(dt)
	if node, _ := t.director.CurrentNode(); node != battle.NodePlayerTurn || t.loop.Pending() > 0 {
		return err
	}
	select {
	case c, ok := <-t.feed:
		if !ok {
			t.loop.Stop()
			return err
		}
		t.loop.Enqueue(c)
	default:
	}
	return err
}

// contentExitError maps content load failures to exit codes.
func contentExitError(err error) error {
	var le *content.LoadError
	if errors.As(err, &le) && le.Code == content.ErrCodeNotFound {
		return WrapExitError(ExitCommandError, "content not found", err)
	}
	return WrapExitError(ExitFailure, "invalid content", err)
}
