package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediacat/internal/catalog"
	"mediacat/internal/config"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog health and folder availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				out := cmd.OutOrStdout()

				health := store.CheckHealth(cmd.Context())
				fmt.Fprintf(out, "Database: %s\n", health.DBPath)
				if info, err := os.Stat(health.DBPath); err == nil {
					fmt.Fprintf(out, "  Size:           %s\n", humanize.IBytes(uint64(info.Size())))
				}
				fmt.Fprintf(out, "  Schema version: %d\n", health.SchemaVersion)
				fmt.Fprintf(out, "  Integrity:      %s\n", yesNo(health.IntegrityCheck))
				fmt.Fprintf(out, "  Entries:        %d\n", health.TotalEntries)
				fmt.Fprintf(out, "  Folders:        %d\n", health.TotalFolders)
				if health.Error != "" {
					fmt.Fprintf(out, "  Problem:        %s\n", health.Error)
				}
				fmt.Fprintln(out)

				stats, orphaned, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if len(stats) == 0 {
					fmt.Fprintln(out, "No folders registered.")
					return nil
				}

				rows := make([][]string, 0, len(stats))
				for _, stat := range stats {
					status := "offline"
					if !stat.Folder.Active {
						status = "disabled"
					} else if stat.Online {
						status = "online"
					}
					rows = append(rows, []string{
						stat.Folder.Path,
						string(stat.Folder.Medium),
						deviceLabel(stat.Folder),
						status,
						strconv.Itoa(stat.Entries),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Folder", "Medium", "Device", "Status", "Entries"},
					rows,
					4,
				))
				if orphaned > 0 {
					fmt.Fprintf(out, "%d entries lie outside every registered folder.\n", orphaned)
				}
				return nil
			})
		},
	}
}

func deviceLabel(folder catalog.Folder) string {
	if folder.Device == "" {
		return "-"
	}
	return folder.Device
}
