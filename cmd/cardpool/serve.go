package main

import (
	"fmt"
	"os"

	"github.com/abelbrown/cardpool/internal/catalog"
	"github.com/abelbrown/cardpool/internal/config"
	"github.com/abelbrown/cardpool/internal/devserver"
	"github.com/abelbrown/cardpool/internal/logging"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local recommendation service",
	Long: `Serve the recommendation API from the local catalog database.

Load cards first with 'cardpool import <dump.jsonl>'.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.InitWriter(os.Stderr, verbose)

	addr := serveAddr
	if addr == "" {
		addr = cfg.DevServer.Addr
	}

	st, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer st.Close()

	n, err := st.CardCount(0)
	if err != nil {
		return err
	}
	if n == 0 {
		logging.Warn("catalog is empty, run `cardpool import` first", "db", cfg.CatalogPath())
	} else {
		logging.Info("catalog loaded", "cards", humanize.Comma(int64(n)), "db", cfg.CatalogPath())
	}

	ctx, cancel := signalContext()
	defer cancel()
	return devserver.New(st, logging.WithPrefix("devserver")).ListenAndServe(ctx, addr)
}
