package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ehr/laborders/internal/config"
	"github.com/ehr/laborders/internal/domain/laborder"
)

// renderCmd renders the table for an encounter snapshot on disk, without a
// database. Handy for checking how an upstream payload will be shown.
func renderCmd() *cobra.Command {
	var (
		file string
		req  laborder.TableRequest
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the lab orders table for a JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOffline()
			if err != nil {
				return err
			}
			var r io.Reader = cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open snapshot: %w", err)
				}
				defer f.Close()
				r = f
			}

			view, err := renderTable(r, laborder.Options{PageSize: cfg.DefaultPageSize, DateLayout: cfg.DateFormat}, req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
	cmd.Flags().StringVar(&file, "file", "-", "Snapshot JSON file, - for stdin")
	cmd.Flags().StringVar(&req.Search, "q", "", "Test name search")
	cmd.Flags().StringVar(&req.RowFilter, "filter", "", "Filter across all columns")
	cmd.Flags().IntVar(&req.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&req.PageSize, "page-size", 0, "Rows per page")
	cmd.Flags().StringSliceVar(&req.Expand, "expand", nil, "Encounter IDs to expand")
	return cmd
}

func renderTable(r io.Reader, opts laborder.Options, req laborder.TableRequest) (laborder.View, error) {
	snap, err := laborder.DecodeSnapshot(r)
	if err != nil {
		return laborder.View{}, err
	}
	t := laborder.NewTable(opts)
	t.Load(snap)
	laborder.ApplyRequest(t, req)
	return t.View(), nil
}
