package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/abelbrown/cardpool/internal/config"
	"github.com/abelbrown/cardpool/internal/ledger"
	"github.com/abelbrown/cardpool/internal/logging"
	"github.com/abelbrown/cardpool/internal/otel"
	"github.com/abelbrown/cardpool/internal/pool"
	"github.com/abelbrown/cardpool/internal/recsvc"
	"github.com/abelbrown/cardpool/internal/session"
	"github.com/abelbrown/cardpool/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "cardpool",
	Short: "Browse card recommendations and build a deck",
	Long: `cardpool shows a small pool of cards drawn from a recommendation
service. Keep a card to add it to your deck, discard it to make room, and
the pool refills from random picks, your deck or your history.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.cardpool/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, importCmd, whoamiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	dataDir := config.DataDir()
	if err := logging.Init(dataDir, verbose); err != nil {
		return err
	}
	defer logging.Close()

	events := openEvents(dataDir)
	defer events.Close()
	events.Info(otel.KindStartup, "main", "starting")
	defer events.Info(otel.KindShutdown, "main", "stopped")

	ctx, cancel := signalContext()
	defer cancel()

	sess, err := session.Open(ctx, cfg)
	if err != nil {
		events.Error(otel.KindError, "main", err)
		if errors.Is(err, recsvc.ErrNoHost) {
			return fmt.Errorf("%w (start one with `cardpool serve`)", err)
		}
		return err
	}
	defer sess.Close()

	sess.Deck.OnSave(func(version uint64, err error) {
		ev := otel.Event{Kind: otel.KindDeckSave, Comp: "deck", Extra: map[string]any{"version": version}}
		if err != nil {
			ev.Level = otel.LevelWarn
			ev.Err = err.Error()
		}
		events.Emit(ev)
	})

	app := ui.NewApp(ui.AppConfig{
		Fetch: func(req pool.Request) tea.Cmd {
			return func() tea.Msg {
				return ui.PoolFetched{Result: pool.Dispatch(ctx, sess.Client, req)}
			}
		},
		Record: func(it ledger.Interaction) tea.Cmd {
			return func() tea.Msg {
				return ui.InteractionRecorded{Interaction: it, Err: sess.Ledger.Record(ctx, it)}
			}
		},
		ClearInteractions: func() tea.Cmd {
			return func() tea.Msg {
				return ui.InteractionsCleared{Err: sess.Ledger.Clear(ctx)}
			}
		},
		UserID:   sess.UserID,
		Capacity: cfg.Pool.Capacity,
		Deck:     sess.Deck,
		Ledger:   sess.Ledger,
		Events:   events,
	})

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logging.Error("program exited", "err", err)
		return err
	}
	return nil
}

// openEvents opens the JSONL event log. A failure to open the file falls
// back to a discarding logger.
func openEvents(dataDir string) *otel.Logger {
	f, err := os.OpenFile(filepath.Join(dataDir, "events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("event log unavailable", "err", err)
		return otel.NewNullLogger()
	}
	return otel.NewLogger(f)
}
