package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cdshelf/internal/catalog"
	"cdshelf/internal/config"
	"cdshelf/internal/fileutil"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole catalog as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := strings.TrimSpace(output)
			if target == "" {
				target = cfg.ExportPath()
			}
			return ctx.withStore(cmd, func(store *catalog.Store) error {
				data, err := store.ExportSnapshot()
				if err != nil {
					return err
				}
				if target == "-" {
					_, err := cmd.OutOrStdout().Write(data)
					return err
				}
				path, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve export path: %w", err)
				}
				if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
					return fmt.Errorf("write snapshot: %w", err)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]any{"path": path, "records": store.Len()})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", store.Len(), path)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default from config, - for stdout)")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path|->",
		Short: "Replace the whole catalog with a JSON snapshot",
		Long: "Replace the whole catalog with the records in a snapshot file.\n" +
			"Entries that are not valid records are skipped and listed; if none is valid\n" +
			"the catalog is left unchanged.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSnapshot(cmd, args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(cmd, func(store *catalog.Store) error {
				report, err := store.ImportSnapshot(cmd.Context(), data)
				if ctx.jsonOutput() && (err == nil || report.Total > 0) {
					if werr := writeJSON(cmd, report); werr != nil {
						return werr
					}
				} else {
					printImportReport(cmd.OutOrStdout(), report, err == nil)
				}
				if err != nil {
					return describeImportError(err)
				}
				return nil
			})
		},
	}
}

func readSnapshot(cmd *cobra.Command, arg string) ([]byte, error) {
	arg = strings.TrimSpace(arg)
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read snapshot from stdin: %w", err)
		}
		return data, nil
	}
	path, err := config.ExpandPath(arg)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshot path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

func printImportReport(out io.Writer, report catalog.ImportReport, applied bool) {
	if applied {
		fmt.Fprintf(out, "Imported %d of %d records\n", report.Accepted, report.Total)
		if report.IDsAssigned > 0 {
			fmt.Fprintf(out, "Assigned new IDs to %d records\n", report.IDsAssigned)
		}
	}
	if len(report.Rejected) == 0 {
		return
	}
	rows := make([][]string, 0, len(report.Rejected))
	for _, r := range report.Rejected {
		title := r.Title
		if title == "" {
			title = catalog.Placeholder
		}
		rows = append(rows, []string{itoa(r.Position + 1), title, r.Reason})
	}
	fmt.Fprintf(out, "Skipped %d invalid entries:\n", len(report.Rejected))
	fmt.Fprintln(out, renderTable([]column{{title: "Entry", right: true}, {title: "Title"}, {title: "Reason"}}, rows))
}

func describeImportError(err error) error {
	switch {
	case errors.Is(err, catalog.ErrParse):
		return fmt.Errorf("import failed, file is not valid JSON: %w", err)
	case errors.Is(err, catalog.ErrInvalidFormat):
		return fmt.Errorf("import failed, catalog unchanged: %w", err)
	default:
		return err
	}
}
