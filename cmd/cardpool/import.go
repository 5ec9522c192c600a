package main

import (
	"fmt"
	"os"
	"time"

	"github.com/abelbrown/cardpool/internal/catalog"
	"github.com/abelbrown/cardpool/internal/config"
	"github.com/abelbrown/cardpool/internal/logging"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a Scryfall bulk dump into the local catalog",
	Long: `Import cards from a Scryfall bulk data file (JSON array or JSON Lines).

Only English cards with rules text are kept, one per distinct name and
rules text.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.InitWriter(os.Stderr, verbose)

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(config.DataDir(), 0755); err != nil {
		return err
	}
	st, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer st.Close()

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	stats, err := st.Import(ctx, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	total, err := st.CardCount(0)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Read %s cards, skipped %s, imported %s in %s. Catalog now holds %s cards.\n",
		humanize.Comma(int64(stats.Read)),
		humanize.Comma(int64(stats.Skipped)),
		humanize.Comma(int64(stats.Imported)),
		time.Since(start).Round(time.Millisecond),
		humanize.Comma(int64(total)),
	)
	return nil
}
