//go:build tui

package main

import (
	"github.com/spf13/cobra"

	"github.com/unowned-ai/dump/pkg/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show terminal UI",
	Long:  `Display an interactive terminal UI for browsing streams and entries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), lockHost)
		if err != nil {
			return err
		}
		defer s.Close()

		return tui.ShowTUI(s.store, s.dbPath)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
