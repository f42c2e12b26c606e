package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/marquee/internal/favourites"
	"github.com/artpar/marquee/internal/seatgeek"
)

// FavListOptions holds options for fav list.
type FavListOptions struct {
	JSON    bool
	Resolve bool
}

// NewFavCommand creates the fav command and its subcommands.
func NewFavCommand(root *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favourite events and venues",
	}

	cmd.AddCommand(newFavToggleCommand(root))
	cmd.AddCommand(newFavListCommand(root))
	cmd.AddCommand(newFavClearCommand(root))
	cmd.AddCommand(newFavExportCommand(root))
	cmd.AddCommand(newFavImportCommand(root))

	return cmd
}

func newFavToggleCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle event|venue ID",
		Short: "Add or remove a favourite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			part, err := favourites.ParsePartition(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			application, err := openApp(cmd, root, false)
			if err != nil {
				return err
			}
			defer application.Close()

			favourite, err := application.Favourites().Toggle(context.Background(), id, part)
			if err != nil {
				return err
			}
			if favourite {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Added %s %d to favourites\n", favourites.Marker(true), part.ItemType(), id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s %d from favourites\n", favourites.Marker(false), part.ItemType(), id)
			}
			return nil
		},
	}
}

func newFavListCommand(root *RootOptions) *cobra.Command {
	opts := &FavListOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List favourites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApp(cmd, root, opts.Resolve)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx := context.Background()
			set, err := application.Favourites().Load(ctx)
			if err != nil {
				return err
			}

			var entries []seatgeek.Resolved
			if opts.Resolve {
				entries, err = application.Client().Resolve(ctx, set)
				if err != nil {
					return err
				}
			} else {
				for _, part := range favourites.Partitions {
					for _, id := range set.IDs(part) {
						entries = append(entries, seatgeek.Resolved{Partition: part, ID: id})
					}
				}
			}

			if opts.JSON {
				return writeJSON(cmd, favEntries(entries))
			}
			return printFavourites(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&opts.Resolve, "resolve", false, "Look up titles from the API")
	return cmd
}

type favEntry struct {
	Type  string `json:"type"`
	ID    int    `json:"id"`
	Title string `json:"title,omitempty"`
	Error string `json:"error,omitempty"`
}

func favEntries(entries []seatgeek.Resolved) []favEntry {
	out := make([]favEntry, 0, len(entries))
	for _, e := range entries {
		entry := favEntry{Type: e.Partition.ItemType(), ID: e.ID, Title: e.Title}
		if e.Err != nil {
			entry.Error = e.Err.Error()
		}
		out = append(out, entry)
	}
	return out
}

func printFavourites(out io.Writer, entries []seatgeek.Resolved) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No favourites found")
		return nil
	}

	var current favourites.Partition
	for _, e := range entries {
		if e.Partition != current {
			if current != "" {
				fmt.Fprintln(out)
			}
			current = e.Partition
			if current == favourites.Venues {
				fmt.Fprintln(out, "Venues")
			} else {
				fmt.Fprintln(out, "Events")
			}
		}
		switch {
		case e.Err != nil:
			fmt.Fprintf(out, "  %8d  Error loading %s\n", e.ID, e.Partition.ItemType())
		case e.Title != "":
			fmt.Fprintf(out, "  %8d  %s\n", e.ID, e.Title)
		default:
			fmt.Fprintf(out, "  %8d\n", e.ID)
		}
	}
	return nil
}

func newFavClearCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every favourite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApp(cmd, root, false)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Favourites().Clear(context.Background()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Favourites cleared")
			return nil
		},
	}
}

func newFavExportCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the favourites record as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := openApp(cmd, root, false)
			if err != nil {
				return err
			}
			defer application.Close()

			set, err := application.Favourites().Load(context.Background())
			if err != nil {
				return err
			}
			data, err := favourites.Encode(set)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}

func newFavImportCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace favourites from an exported record (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			set, err := favourites.Decode(data)
			if err != nil {
				return err
			}

			application, err := openApp(cmd, root, false)
			if err != nil {
				return err
			}
			defer application.Close()

			if err := application.Favourites().Replace(context.Background(), set); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d events and %d venues\n",
				set.Len(favourites.Events), set.Len(favourites.Venues))
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
