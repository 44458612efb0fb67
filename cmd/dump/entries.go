package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/dump/pkg/notes"
)

var (
	jsonOutputFlag bool
	queryFlag      string
	offsetFlag     int
	limitFlag      int
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage entries",
	Long:  `Create, list, update, and delete entries. Tags such as {Work/ProjectX} in the tags line are stored as stream references.`,
}

var createEntryCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new entry",
	Long:  `Create a new entry with a title, a body and a tags line. Unknown tags create their streams.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")
		meta, _ := cmd.Flags().GetString("meta")

		if title == "" && body == "" {
			return errors.New("entry title or body is required")
		}

		s, err := openSession(cmd.Context(), lockShared)
		if err != nil {
			return err
		}
		defer s.Close()

		entry, err := s.store.CreateEntry(cmd.Context(), title, body, meta)
		if err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}
		return showEntry(cmd, entry)
	},
}

var getEntryCmd = &cobra.Command{
	Use:   "get [entry-id]",
	Short: "Get an entry by ID",
	Long:  `Retrieve an entry by its ID with its tags shown by name.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), lockShared)
		if err != nil {
			return err
		}
		defer s.Close()

		entry, err := s.store.GetEntry(cmd.Context(), args[0])
		if errors.Is(err, notes.ErrEntryNotFound) {
			return fmt.Errorf("entry not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}
		return showEntry(cmd, entry)
	},
}

var listEntriesCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	Long: `List entries, newest first. The query may contain tags, which restrict the
result to entries tagged with those streams or their children, and free text,
which must appear in the title or the body, ignoring case.

Example:
  dump entries list --query "{Work/ProjectX} standup" --limit 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if offsetFlag < 0 || limitFlag < 0 {
			return errors.New("offset and limit must not be negative")
		}

		s, err := openSession(cmd.Context(), lockShared)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := notes.ListOptions{Query: queryFlag, Offset: offsetFlag}
		if cmd.Flags().Changed("limit") {
			opts.Limit = notes.LimitOf(limitFlag)
		}
		list, err := s.store.ListEntries(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutputFlag {
			return printJSON(out, list)
		}
		if len(list.Entries) == 0 {
			if list.Total > 0 {
				fmt.Fprintf(out, "No entries on this page (%d matching).\n", list.Total)
				return nil
			}
			fmt.Fprintln(out, "No entries found.")
			return nil
		}

		fmt.Fprintf(out, "Entries %d-%d of %d:\n", list.Offset+1, list.Offset+len(list.Entries), list.Total)
		fmt.Fprintln(out, "ID | Title | Tags | Created At")
		fmt.Fprintln(out, "------------------------------------------------------------")
		for _, e := range list.Entries {
			fmt.Fprintf(out, "%s | %s | %s | %s\n", e.ID, e.Title, e.Meta, formatTimestamp(e.Created))
		}
		return nil
	},
}

var updateEntryCmd = &cobra.Command{
	Use:   "update [entry-id]",
	Short: "Update an entry",
	Long:  `Update the title, body or tags line of an entry. Fields whose flags are not given keep their current value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("title") && !flags.Changed("body") && !flags.Changed("meta") {
			return errors.New("at least one of --title, --body or --meta must be provided")
		}

		s, err := openSession(cmd.Context(), lockShared)
		if err != nil {
			return err
		}
		defer s.Close()

		current, err := s.store.GetEntry(cmd.Context(), args[0])
		if errors.Is(err, notes.ErrEntryNotFound) {
			return fmt.Errorf("entry not found: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to get entry: %w", err)
		}

		if flags.Changed("title") {
			current.Title, _ = flags.GetString("title")
		}
		if flags.Changed("body") {
			current.Body, _ = flags.GetString("body")
		}
		if flags.Changed("meta") {
			current.Meta, _ = flags.GetString("meta")
		}

		entry, err := s.store.UpdateEntry(cmd.Context(), current.ID, current.Title, current.Body, current.Meta)
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}
		return showEntry(cmd, entry)
	},
}

var deleteEntryCmd = &cobra.Command{
	Use:   "delete [entry-id]",
	Short: "Delete an entry",
	Long:  `Permanently delete an entry by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), lockShared)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.store.DeleteEntry(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Entry %s deleted.\n", args[0])
		return nil
	},
}

func showEntry(cmd *cobra.Command, entry notes.Entry) error {
	if jsonOutputFlag {
		return printJSON(cmd.OutOrStdout(), entry)
	}
	printEntry(cmd.OutOrStdout(), entry)
	return nil
}

func initEntriesCmd() {
	entriesCmd.PersistentFlags().BoolVar(&jsonOutputFlag, "json", false, "Print results as JSON")

	createEntryCmd.Flags().String("title", "", "Title of the entry")
	createEntryCmd.Flags().String("body", "", "Body of the entry")
	createEntryCmd.Flags().String("meta", "", "Tags line of the entry, e.g. \"{Work/ProjectX} {Ideas}\"")

	updateEntryCmd.Flags().String("title", "", "New title for the entry")
	updateEntryCmd.Flags().String("body", "", "New body for the entry")
	updateEntryCmd.Flags().String("meta", "", "New tags line for the entry")

	listEntriesCmd.Flags().StringVar(&queryFlag, "query", "", "Filter by tags and free text")
	listEntriesCmd.Flags().IntVar(&offsetFlag, "offset", 0, "Number of matching entries to skip")
	listEntriesCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of entries to return (all when not set)")

	entriesCmd.AddCommand(
		createEntryCmd,
		getEntryCmd,
		listEntriesCmd,
		updateEntryCmd,
		deleteEntryCmd,
	)
}
