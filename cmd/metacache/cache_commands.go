package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all cached metadata entries",
		Long:  "Display all cached entries sorted by most recently stored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}

			records := cache.List()

			if ctx.JSONMode() {
				entries := make(map[string]any, len(records))
				for _, record := range records {
					entries[record.Key] = record.Entry
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "Metadata cache: empty")
				return nil
			}

			fmt.Fprintf(out, "Metadata cache: %d entries\n", len(records))

			rows := make([][]string, 0, len(records))
			for i, record := range records {
				mediaType, title, yearStr := splitKey(record.Key)
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					mediaType,
					title,
					yearStr,
					cachedStamp(record.Entry),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Type", "Title", "Year", "Cached"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries",
		Long:  "Delete every cached entry and the backing file. The cache repopulates as new lookups are stored.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}

			count := cache.Len()
			if count == 0 {
				if ctx.JSONMode() {
					return writeJSON(cmd, map[string]any{"removed": 0})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Metadata cache is already empty")
				return nil
			}

			cache.Clear()

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"removed": count})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached entries\n", count)
			return nil
		},
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}

			var fileSize int64
			fileExists := false
			if cache.Path() != "" {
				if info, err := os.Stat(cache.Path()); err == nil {
					fileSize = info.Size()
					fileExists = true
				}
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"enabled":     cfg.Cache.Enabled,
					"path":        cache.Path(),
					"entry_count": cache.Len(),
					"ttl_days":    cfg.Cache.TTLDays,
					"file_exists": fileExists,
					"file_bytes":  fileSize,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Enabled:  %s\n", yesNo(cfg.Cache.Enabled))
			fmt.Fprintf(out, "Path:     %s\n", cache.Path())
			fmt.Fprintf(out, "Entries:  %d\n", cache.Len())
			fmt.Fprintf(out, "TTL:      %d days\n", cfg.Cache.TTLDays)
			if fileExists {
				fmt.Fprintf(out, "File:     %d bytes\n", fileSize)
			} else {
				fmt.Fprintln(out, "File:     not written yet")
			}
			return nil
		},
	}
}

// splitKey breaks a normalized key back into its display fields.
func splitKey(key string) (mediaType, title, year string) {
	parts := strings.SplitN(key, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return parts[0], parts[1], parts[2]
}

func cachedStamp(entry map[string]any) string {
	raw, ok := entry["timestamp"].(string)
	if !ok {
		return "unknown"
	}
	stamp, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "unknown"
	}
	return stamp.Local().Format("2006-01-02")
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
