package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/iksnae/flow-analyzer/internal"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// cacheCmd groups the summary cache commands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the summary cache",
	Long:  `Inspect cached summaries. Entries are never evicted; delete files from the cache directory to reclaim space.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached summaries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cache := internal.NewCacheManager(cfg.CacheDir)

		entries, err := cache.List()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			_, _ = fmt.Fprintf(out, "No cached summaries in %s\n", cache.GetCacheDir())
			return nil
		}

		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Key", "Size", "Modified"})
		table.SetAutoFormatHeaders(false)
		table.SetBorder(false)
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT})
		for _, e := range entries {
			table.Append([]string{e.Key, humanize.Bytes(uint64(e.Size)), humanize.Time(e.ModTime)})
		}
		table.Render()

		_, _ = fmt.Fprintf(out, "\n%d cached summary(ies) in %s\n", len(entries), cache.GetCacheDir())
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print a cached summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cache := internal.NewCacheManager(cfg.CacheDir)

		key := args[0]
		entry, ok, err := cache.Load(key)
		if err != nil {
			return err
		}
		if !ok {
			return &internal.NotFoundError{Path: cache.GetEntryPath(key)}
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), wrapText(entry.Summary, summaryWidth))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
