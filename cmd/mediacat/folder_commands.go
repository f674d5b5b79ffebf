package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediacat/internal/catalog"
	"mediacat/internal/config"
)

func newFolderCommand(ctx *commandContext) *cobra.Command {
	folderCmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage registered media folders",
	}

	folderCmd.AddCommand(newFolderAddCommand(ctx))
	folderCmd.AddCommand(newFolderListCommand(ctx))
	folderCmd.AddCommand(newFolderSetActiveCommand(ctx, "enable", true))
	folderCmd.AddCommand(newFolderSetActiveCommand(ctx, "disable", false))
	folderCmd.AddCommand(newFolderRemoveCommand(ctx))

	return folderCmd
}

func newFolderAddCommand(ctx *commandContext) *cobra.Command {
	var medium string
	var device string

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a folder for scanning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, ok := catalog.ParseMedium(medium)
			if !ok {
				return fmt.Errorf("unknown medium %q (local or network)", medium)
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				existing, err := store.FolderByPath(cmd.Context(), path)
				if err != nil {
					return err
				}
				if existing != nil {
					return fmt.Errorf("folder already registered as #%d", existing.ID)
				}

				folder, err := store.AddFolder(cmd.Context(), path, parsed, device)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered folder #%d (%s)\n", folder.ID, folder.Path)
				if !catalog.FolderReachable(folder.Path) {
					fmt.Fprintln(cmd.OutOrStdout(), "Note: the folder is currently offline; it will be scanned when reachable.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&medium, "medium", "local", "Storage medium: local or network")
	cmd.Flags().StringVar(&device, "device", "", "Device label for the folder")
	return cmd
}

func newFolderListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered folders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				stats, orphaned, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if len(stats) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No folders registered. Add one with `mediacat folder add <path>`.")
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
						strconv.FormatInt(stat.Folder.ID, 10),
						stat.Folder.Path,
						string(stat.Folder.Medium),
						status,
						strconv.Itoa(stat.Entries),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Path", "Medium", "Status", "Entries"},
					rows,
					0, 4,
				))
				if orphaned > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%d entries lie outside every registered folder and will be removed on the next scan.\n", orphaned)
				}
				return nil
			})
		},
	}
}

func newFolderSetActiveCommand(ctx *commandContext, verb string, active bool) *cobra.Command {
	short := "Disable scanning for a folder"
	if active {
		short = "Re-enable scanning for a folder"
	}
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid folder id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if err := store.SetFolderActive(cmd.Context(), id, active); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Folder #%d %sd\n", id, verb)
				return nil
			})
		},
	}
}

func newFolderRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Unregister a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid folder id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				removed, err := store.RemoveFolder(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("folder #%d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Folder #%d removed. Its entries will be cleaned up on the next scan.\n", id)
				return nil
			})
		},
	}
}
