package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"metacache/internal/metadatacache"
)

func newStoreCommand(ctx *commandContext) *cobra.Command {
	var mediaType string
	var year int
	var data string

	cmd := &cobra.Command{
		Use:   "store <title>",
		Short: "Store a metadata entry under a query key",
		Long: `Store a metadata entry under the normalized query key.

The entry is a JSON object supplied via --data, or read from stdin when
--data is "-". The cache stamps the entry's timestamp itself; any timestamp
in the supplied document is overwritten.

Example:
  metacache store "The Matrix" --type movie --year 1999 \
    --data '{"tmdb_id": 603, "title": "The Matrix"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := decodeEntry(cmd.InOrStdin(), data)
			if err != nil {
				return err
			}

			cache, err := ctx.openCache()
			if err != nil {
				return err
			}

			cache.PutByQuery(mediaType, args[0], year, entry)
			cache.Close()

			key := metadatacache.Key(mediaType, args[0], year)
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"stored": true, "key": key})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored entry under %s\n", key)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mediaType, "type", "t", "", "Media type of the query (movie, tv, ...)")
	cmd.Flags().IntVarP(&year, "year", "y", 0, "Release year of the query (0 when unknown)")
	cmd.Flags().StringVarP(&data, "data", "d", "{}", "Entry document as JSON, or - to read stdin")
	return cmd
}

func decodeEntry(stdin io.Reader, data string) (metadatacache.Entry, error) {
	var reader io.Reader = strings.NewReader(data)
	if strings.TrimSpace(data) == "-" {
		reader = stdin
	}

	var entry metadatacache.Entry
	dec := json.NewDecoder(reader)
	if err := dec.Decode(&entry); err != nil {
		return nil, fmt.Errorf("parse entry document: %w", err)
	}
	return entry, nil
}
