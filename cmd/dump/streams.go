package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/dump/pkg/notes"
)

var streamsCmd = &cobra.Command{
	Use:   "streams",
	Short: "Manage streams",
	Long:  `List, rename, and delete streams. A stream is a tag; "/" in its name nests it under a parent.`,
}

var listStreamsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all streams",
	Long:  `List all streams, Inbox first, the rest by name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), lockShared)
		if err != nil {
			return err
		}
		defer s.Close()

		streams, err := s.store.ListStreams(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list streams: %w", err)
		}

		out := cmd.OutOrStdout()
		if jsonOutputFlag {
			return printJSON(out, streams)
		}
		if len(streams) == 0 {
			fmt.Fprintln(out, "No streams found.")
			return nil
		}

		fmt.Fprintln(out, "ID | Name")
		fmt.Fprintln(out, "------------------------------------------------------------")
		for _, st := range streams {
			fmt.Fprintf(out, "%s | %s\n", st.ID, st.Name)
		}
		return nil
	},
}

var renameStreamCmd = &cobra.Command{
	Use:   "rename [stream-id|name] [new-name]",
	Short: "Rename a stream",
	Long: `Rename a stream. Entries tagged with it show the new name immediately.
Renaming a parent does not rename its children.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), lockShared)
		if err != nil {
			return err
		}
		defer s.Close()

		stream, err := resolveStream(cmd.Context(), s.store, args[0])
		if err != nil {
			return err
		}

		renamed, err := s.store.UpdateStream(cmd.Context(), stream.ID, args[1])
		if err != nil {
			return fmt.Errorf("failed to rename stream: %w", err)
		}
		if jsonOutputFlag {
			return printJSON(cmd.OutOrStdout(), renamed)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stream %s renamed: %s -> %s\n", renamed.ID, stream.Name, renamed.Name)
		return nil
	},
}

var deleteStreamCmd = &cobra.Command{
	Use:   "delete [stream-id|name]",
	Short: "Delete a stream",
	Long:  `Delete a stream and remove its tag from every entry that carries it. The entries themselves are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context(), lockShared)
		if err != nil {
			return err
		}
		defer s.Close()

		stream, err := resolveStream(cmd.Context(), s.store, args[0])
		if err != nil {
			return err
		}

		if err := s.store.DeleteStream(cmd.Context(), stream.ID); err != nil {
			return fmt.Errorf("failed to delete stream: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stream %s (%s) deleted.\n", stream.ID, stream.Name)
		return nil
	},
}

// resolveStream looks ref up as an id first, then as a name.
func resolveStream(ctx context.Context, store *notes.Store, ref string) (notes.Stream, error) {
	stream, err := store.StreamByID(ctx, ref)
	if err == nil {
		return stream, nil
	}
	if !errors.Is(err, notes.ErrStreamNotFound) {
		return notes.Stream{}, fmt.Errorf("failed to get stream: %w", err)
	}

	stream, found, err := store.StreamByName(ctx, ref, false)
	if err != nil {
		return notes.Stream{}, fmt.Errorf("failed to get stream: %w", err)
	}
	if !found {
		return notes.Stream{}, fmt.Errorf("stream not found: %s", ref)
	}
	return stream, nil
}

func initStreamsCmd() {
	streamsCmd.PersistentFlags().BoolVar(&jsonOutputFlag, "json", false, "Print results as JSON")

	streamsCmd.AddCommand(
		listStreamsCmd,
		renameStreamCmd,
		deleteStreamCmd,
	)
}
