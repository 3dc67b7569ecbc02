package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/service"
	"github.com/Veraticus/tally/internal/storage"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Save and restore copies of the database",
		Long: `Manage database snapshots stored next to the SQLite file.

An automatic snapshot is taken before 'tally seed --clear'; the five most
recent automatic snapshots are kept.`,
	}

	cmd.AddCommand(createSnapshotCmd())
	cmd.AddCommand(listSnapshotsCmd())
	cmd.AddCommand(restoreSnapshotCmd())
	cmd.AddCommand(deleteSnapshotCmd())

	return cmd
}

// withSnapshots opens the SQLite store and a snapshot manager over it.
func withSnapshots(ctx context.Context, fn func(*storage.SnapshotManager) error) error {
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	mgr, err := snapshotManager(store)
	if err != nil {
		return err
	}
	return fn(mgr)
}

func snapshotManager(store service.Storage) (*storage.SnapshotManager, error) {
	sqlite, ok := store.(*storage.SQLiteStorage)
	if !ok {
		return nil, fmt.Errorf("snapshots require the sqlite store")
	}
	return storage.NewSnapshotManager(sqlite)
}

func createSnapshotCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create [id]",
		Short: "Create a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return withSnapshots(cmd.Context(), func(mgr *storage.SnapshotManager) error {
				snap, err := mgr.Create(cmd.Context(), id, description)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created snapshot %q (%d products, %d sales)",
					snap.ID, snap.Products, snap.Sales)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Snapshot description")

	return cmd
}

func listSnapshotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSnapshots(cmd.Context(), func(mgr *storage.SnapshotManager) error {
				snaps, err := mgr.List(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(snaps) == 0 {
					fmt.Fprintln(out, cli.InfoStyle.Render("No snapshots yet. Use 'tally snapshot create' to make one."))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				defer func() { _ = w.Flush() }()

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					headerStyle.Render("ID"),
					headerStyle.Render("Created"),
					headerStyle.Render("Products"),
					headerStyle.Render("Sales"),
					headerStyle.Render("Size"),
					headerStyle.Render("Description"))
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					strings.Repeat("-", 24),
					strings.Repeat("-", 16),
					strings.Repeat("-", 8),
					strings.Repeat("-", 6),
					strings.Repeat("-", 8),
					strings.Repeat("-", 30))

				for _, s := range snaps {
					desc := s.Description
					if s.IsAuto {
						desc = cli.SubtleStyle.Render(desc)
					}
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
						s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Products, s.Sales, formatBytes(s.FileSize), desc)
				}
				return nil
			})
		},
	}
}

func restoreSnapshotCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the database with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			return withSnapshots(ctx, func(mgr *storage.SnapshotManager) error {
				snap, err := mgr.Get(ctx, id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !force {
					ok, err := cli.Confirm(ctx, cmd.InOrStdin(), out,
						fmt.Sprintf("Replace the current database with snapshot %q (%d sales)?", snap.ID, snap.Sales))
					if err != nil {
						return err
					}
					if !ok {
						fmt.Fprintln(out, "Restore cancelled.")
						return nil
					}
				}

				if err := mgr.Restore(ctx, id); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Restored snapshot %q", id)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

func deleteSnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSnapshots(cmd.Context(), func(mgr *storage.SnapshotManager) error {
				if err := mgr.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted snapshot %q", args[0])))
				return nil
			})
		},
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
