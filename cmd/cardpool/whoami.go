package main

import (
	"fmt"

	"github.com/abelbrown/cardpool/internal/config"
	"github.com/abelbrown/cardpool/internal/identity"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the user id sent to the recommendation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		id, err := identity.Derive(cfg.User.ID)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}
