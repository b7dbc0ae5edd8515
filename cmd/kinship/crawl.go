package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenthands/kinship/internal/core"
	"github.com/agenthands/kinship/internal/core/community"
	"github.com/agenthands/kinship/internal/core/parser"
	"github.com/agenthands/kinship/internal/core/render"
	"github.com/agenthands/kinship/internal/core/resolve"
	"github.com/agenthands/kinship/internal/logging"
)

var (
	maxNodes     int
	desktopLinks bool
	layout       string
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <id|Q-id|name>",
	Short: "Crawl a family graph and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := logging.New(cfg.Log)

		id, err := resolve.NewResolver(client, logger).Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		crawler := core.NewCrawler(client, parser.NewParser(cfg.Wikidata.Language, !desktopLinks && cfg.Server.MobileLinks))
		crawler.Logger = logger
		crawler.MaxNodes = cfg.Crawl.MaxNodes
		crawler.Deadline = cfg.Crawl.CrawlDeadline.Duration

		var opts []core.CrawlOption
		if cmd.Flags().Changed("max-nodes") {
			opts = append(opts, core.WithMaxNodes(maxNodes))
		}

		res, err := crawler.Crawl(ctx, id, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Q%s: %s after %d rounds in %s\n", id, res.State, res.Rounds, res.Duration.Round(time.Millisecond))

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.Graph(render.NewSerializer(community.New(layout))))
	},
}

func init() {
	crawlCmd.Flags().IntVar(&maxNodes, "max-nodes", 0, "maximum number of people to discover (default from config)")
	crawlCmd.Flags().BoolVar(&desktopLinks, "desktop-links", false, "link to desktop Wikipedia instead of the mobile site")
	crawlCmd.Flags().StringVar(&layout, "layout", "lpa", "node clustering for x bands: lpa or components")
}
