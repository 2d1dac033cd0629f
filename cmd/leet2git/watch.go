package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"leet2git/internal/page"

	"github.com/spf13/cobra"
)

const defaultIntervalMs = 500

var (
	watchSource        string
	watchURL           string
	watchIntervalMs    int
	watchRenderDelayMs int
	watchCooldownMs    int
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a page capture and report accepted submissions",
		Long: `Watch a page capture for accepted submissions and send them to the server.

The source is either a file (capture JSON {url, html, editorModels} or raw
HTML) re-read on every poll, or an http(s) endpoint serving a capture.`,
		Args: cobra.NoArgs,
		RunE: runWatchCmd,
	}
	cmd.Flags().StringVar(&watchSource, "source", "", "capture file path or http(s) endpoint")
	cmd.Flags().StringVar(&watchURL, "url", "", "page URL for raw HTML captures")
	cmd.Flags().IntVar(&watchIntervalMs, "interval-ms", defaultIntervalMs, "poll interval in milliseconds")
	cmd.Flags().IntVar(&watchRenderDelayMs, "render-delay-ms", int(page.DefaultRenderDelay.Milliseconds()), "wait before reading the code, in milliseconds")
	cmd.Flags().IntVar(&watchCooldownMs, "cooldown-ms", int(page.DefaultCooldown.Milliseconds()), "ignore re-triggers for this long after an attempt, in milliseconds")
	return cmd
}

func runWatchCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "source", &watchSource, fileCfg.Watch.Source)
	applyStringConfig(cmd, "url", &watchURL, fileCfg.Watch.URL)
	applyIntConfig(cmd, "interval-ms", &watchIntervalMs, fileCfg.Watch.IntervalMs)
	applyIntConfig(cmd, "render-delay-ms", &watchRenderDelayMs, fileCfg.Watch.RenderDelayMs)
	applyIntConfig(cmd, "cooldown-ms", &watchCooldownMs, fileCfg.Watch.CooldownMs)

	if watchSource == "" {
		return fmt.Errorf("no capture source, pass --source or set [watch] source")
	}
	c, err := newClient(cmd)
	if err != nil {
		return err
	}

	watcher := page.NewWatcher(newSource(watchSource, watchURL), page.NewExtractor(), c, page.NewTerminalNotifier(os.Stdout), page.WatcherOptions{
		RenderDelay: time.Duration(watchRenderDelayMs) * time.Millisecond,
		Cooldown:    time.Duration(watchCooldownMs) * time.Millisecond,
	})

	ctx, cancel := signalContext()
	defer cancel()
	if err := c.Health(ctx); err != nil {
		return fmt.Errorf("leet2git server is not reachable at %s: %w", serverURL, err)
	}
	log.Printf("INFO: Watching %s for accepted submissions", watchSource)
	if err := watcher.Run(ctx, time.Duration(watchIntervalMs)*time.Millisecond); err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}
	return nil
}

func newSource(source, pageURL string) page.SnapshotSource {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return page.HTTPSource{Endpoint: source, URL: pageURL}
	}
	return page.FileSource{Path: source, URL: pageURL}
}
