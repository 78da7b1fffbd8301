package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"metacache/internal/metadatacache"
)

var errCacheMiss = errors.New("cache miss")

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var mediaType string
	var year int
	var missExit bool

	cmd := &cobra.Command{
		Use:   "lookup <title>",
		Short: "Look up a cached metadata entry by query",
		Long: `Look up a cached metadata entry by (media type, title, year) query.

The query is normalized the same way writes are, so casing and surrounding
whitespace do not matter. Expired entries count as misses and are evicted.

Example:
  metacache lookup "The Matrix" --type movie --year 1999`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			// A lookup can evict an expired entry; Close flushes that.
			defer cache.Close()

			entry, ok := cache.GetByQuery(mediaType, args[0], year)
			key := metadatacache.Key(mediaType, args[0], year)

			if !ok {
				if ctx.JSONMode() {
					if err := writeJSON(cmd, map[string]any{"found": false, "key": key}); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "No cached entry for %s\n", key)
				}
				if missExit {
					return errCacheMiss
				}
				return nil
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"found": true, "key": key, "entry": entry})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cached entry for %s:\n", key)
			return writeJSON(cmd, entry)
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", "", "Media type of the query (movie, tv, ...)")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Release year of the query (0 when unknown)")
	cmd.Flags().BoolVar(&missExit, "miss-exit", false, "Exit nonzero on a cache miss, for scripting")
	return cmd
}
