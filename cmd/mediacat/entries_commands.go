package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediacat/internal/catalog"
	"mediacat/internal/config"
	"mediacat/internal/namemeta"
)

func newEntriesCommand(ctx *commandContext) *cobra.Command {
	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "Inspect and edit catalog entries",
	}

	entriesCmd.AddCommand(newEntriesListCommand(ctx))
	entriesCmd.AddCommand(newEntriesShowCommand(ctx))
	entriesCmd.AddCommand(newEntriesSetCommand(ctx))
	entriesCmd.AddCommand(newEntriesDuplicatesCommand(ctx))

	return entriesCmd
}

func newEntriesListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				entries, err := store.ListEntries(cmd.Context())
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "The catalog is empty. Run `mediacat scan` to populate it.")
					return nil
				}

				total := len(entries)
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}

				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						displayTitle(entry),
						starString(entry.Stars),
						humanize.IBytes(uint64(entry.Size)),
						entry.Path,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Stars", "Size", "Path"},
					rows,
					0, 3,
				))
				if len(entries) < total {
					fmt.Fprintf(cmd.OutOrStdout(), "Showing %d of %d entries.\n", len(entries), total)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to list (0 for all)")
	return cmd
}

func newEntriesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				entry, err := store.EntryByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if entry == nil {
					return fmt.Errorf("entry #%d not found", id)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Entry #%d\n", entry.ID)
				fmt.Fprintf(out, "  Title:         %s\n", displayTitle(entry))
				fmt.Fprintf(out, "  Stars:         %s\n", starString(entry.Stars))
				fmt.Fprintf(out, "  Tags:          %s\n", dash(entry.Tags))
				fmt.Fprintf(out, "  Description:   %s\n", dash(entry.Description))
				fmt.Fprintf(out, "  Path:          %s\n", entry.Path)
				fmt.Fprintf(out, "  Source folder: %s\n", dash(entry.SourceFolder))
				fmt.Fprintf(out, "  Size:          %s\n", humanize.IBytes(uint64(entry.Size)))
				fmt.Fprintf(out, "  Hash:          %s\n", dash(entry.Hash))
				if entry.ModTime != nil {
					fmt.Fprintf(out, "  Modified:      %s\n", entry.ModTime.Local().Format("2006-01-02 15:04:05"))
				}
				if entry.LastSeenAt != nil {
					fmt.Fprintf(out, "  Last seen:     %s\n", humanize.Time(*entry.LastSeenAt))
				}
				return nil
			})
		},
	}
}

func newEntriesSetCommand(ctx *commandContext) *cobra.Command {
	var title, description, tags string
	var stars int

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Edit an entry's title, stars, tags, or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			if !cmd.Flags().Changed("title") &&
				!cmd.Flags().Changed("description") &&
				!cmd.Flags().Changed("tags") &&
				!cmd.Flags().Changed("stars") {
				return fmt.Errorf("nothing to change; pass at least one of --title, --stars, --tags, --description")
			}

			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				if cmd.Flags().Changed("title") {
					if err := store.SetTitle(cmd.Context(), id, title); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("description") {
					if err := store.SetDescription(cmd.Context(), id, description); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("tags") {
					if err := store.SetTags(cmd.Context(), id, tags); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("stars") {
					if err := store.SetStars(cmd.Context(), id, stars); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry #%d updated\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&tags, "tags", "", "New comma-separated tags")
	cmd.Flags().IntVar(&stars, "stars", 0, "New star rating (0-5)")
	return cmd
}

func newEntriesDuplicatesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "List duplicate groups without removing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				groups, err := store.DuplicateGroups(cmd.Context())
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No duplicates found.")
					return nil
				}

				out := cmd.OutOrStdout()
				for i, group := range groups {
					fmt.Fprintf(out, "Group %d (%s, %d copies):\n", i+1, group[0].Hash, len(group))
					for _, entry := range group {
						fmt.Fprintf(out, "  #%-6d %-10s %s\n",
							entry.ID, humanize.IBytes(uint64(entry.Size)), entry.Path)
					}
				}
				fmt.Fprintf(out, "\n%d duplicate groups. Run `mediacat dedupe` to collapse them.\n", len(groups))
				return nil
			})
		},
	}
}

func displayTitle(entry *catalog.Entry) string {
	if entry.Title == "" {
		return entry.Filename
	}
	return namemeta.DisplayTitle(entry.Title)
}

func starString(stars int) string {
	if stars <= 0 {
		return "-"
	}
	return strings.Repeat("★", stars)
}

func dash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
