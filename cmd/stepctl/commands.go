package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petrijr/stepflow/internal/catalog"
)

func (a *app) workflowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List catalogued workflows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store catalog.Store) error {
				names, err := store.ListWorkflows(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(a.out, name)
				}
				return nil
			})
		},
	}
}

func (a *app) stepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps <workflow>",
		Short: "Print the latest step catalog of a workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store catalog.Store) error {
				snap, err := a.latest(cmd, store, args[0])
				if err != nil {
					return err
				}
				return writeTable(a, snap)
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <workflow>",
		Short: "Write the latest step catalog of a workflow as YAML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(store catalog.Store) error {
				snap, err := a.latest(cmd, store, args[0])
				if err != nil {
					return err
				}

				if output == "" || output == "-" {
					return catalog.Encode(a.out, snap, format)
				}

				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := catalog.Encode(f, snap, format); err != nil {
					_ = f.Close()
					return err
				}
				a.logger.Info("catalog_exported",
					slog.String("workflow", snap.Workflow),
					slog.String("snapshot", snap.ID),
					slog.String("file", output),
				)
				return f.Close()
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", catalog.FormatYAML, "Output format: yaml or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Store a YAML or JSON step catalog snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read file %s: %w", args[0], err)
			}
			snap, err := catalog.Decode(data)
			if err != nil {
				return err
			}

			return a.withStore(cmd.Context(), func(store catalog.Store) error {
				if err := store.SaveSnapshot(cmd.Context(), snap); err != nil {
					return err
				}
				a.logger.Info("catalog_imported",
					slog.String("workflow", snap.Workflow),
					slog.String("snapshot", snap.ID),
					slog.Int("steps", len(snap.Entries)),
				)
				fmt.Fprintln(a.out, snap.ID)
				return nil
			})
		},
	}
}

func (a *app) latest(cmd *cobra.Command, store catalog.Store, workflow string) (catalog.Snapshot, error) {
	snap, err := store.LatestSnapshot(cmd.Context(), workflow)
	if errors.Is(err, catalog.ErrSnapshotNotFound) {
		return catalog.Snapshot{}, fmt.Errorf("workflow %s: %w", workflow, err)
	}
	return snap, err
}

func writeTable(a *app, snap catalog.Snapshot) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tEVENT\tACCEPTS\tRETURNS\tPASS_CONTEXT\tWORKERS")
	for _, e := range snap.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%d\n",
			e.Step,
			e.EventName,
			strings.Join(e.AcceptedEvents, ","),
			strings.Join(e.ReturnTypes, ","),
			e.PassContext,
			e.NumWorkers,
		)
	}
	return tw.Flush()
}
