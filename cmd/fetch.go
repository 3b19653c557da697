package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/brogergvhs/picdl/internal/config"
	"github.com/brogergvhs/picdl/internal/downloader"
	"github.com/brogergvhs/picdl/internal/gallery"
	"github.com/brogergvhs/picdl/internal/ui"
	"github.com/brogergvhs/picdl/internal/util"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	flagUserAgent string
	flagDryRun    bool
	flagConfirm   bool
	flagCBZ       bool
	flagCFBypass  bool
)

func init() {
	fetchCmd := &cobra.Command{
		Use:   "fetch <gallery-url> [output-dir]",
		Short: "Crawl a gallery and download its images into a folder named after the title",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runFetch,
	}

	fetchCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	fetchCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "list image URLs, don’t download")
	fetchCmd.Flags().BoolVar(&flagConfirm, "confirm", false, "ask before downloading")
	fetchCmd.Flags().BoolVar(&flagCBZ, "cbz", false, "also pack the downloaded gallery into a CBZ archive")
	fetchCmd.Flags().BoolVar(&flagCFBypass, "cf-bypass", false, "enable the Cloudflare bypass transport")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return cmd.Usage()
	}

	entryURL := args[0]
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		UserAgent:    flagUserAgent,
		CFBypass:     flagCFBypass,
		CBZ:          flagCBZ,
	})
	if err != nil {
		return err
	}

	if len(args) > 1 {
		cfg.Output = args[1]
	}

	logSvc := ui.NewLogger(cfg.Debug)
	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	client := util.NewHTTPClient(util.HTTPClientOptions{
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Referer:     cfg.Referer,
		CFBypass:    cfg.CFBypass,
		DebugLogger: logSvc,
	})

	ctx := context.Background()

	fetcher := gallery.NewHTTPFetcher(client, time.Duration(cfg.PageTimeoutSec)*time.Second)
	extractor := gallery.NewExtractor(cfg.Domain(), cfg.AllowExt)
	crawler := gallery.NewCrawler(fetcher, extractor, logSvc)

	fmt.Printf("Fetching gallery info from: %s\n", entryURL)

	info, err := crawler.Crawl(ctx, entryURL)
	if err != nil {
		logSvc.Errorf("Error getting gallery info: %v\n", err)
		return nil
	}

	if len(info.Images) == 0 {
		fmt.Println("No gallery information or images found!")
		return nil
	}

	fmt.Printf("\nGallery Title: %s\n", info.Title)
	fmt.Printf("Found %d unique images\n", len(info.Images))
	if len(info.PageErrors) > 0 {
		fmt.Printf("(%d pages could not be fetched)\n", len(info.PageErrors))
	}

	if flagDryRun {
		fmt.Println()
		for i, u := range info.Images {
			fmt.Printf("%3d) %s\n", i+1, u)
		}
		return nil
	}

	targetDir := filepath.Join(cfg.Output, info.Title)
	abs, err := filepath.Abs(targetDir)
	if err != nil {
		abs = targetDir
	}
	fmt.Printf("\nDownloading to: %s\n", abs)

	if flagConfirm {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Download %d images", len(info.Images)),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			fmt.Println("Aborted.")
			return nil
		}
	}

	pm := ui.NewProgress()
	handle := pm.Register(info.Title, len(info.Images))

	stats := &ui.Stats{}
	dl := downloader.New(client, time.Duration(cfg.ImageTimeoutSec)*time.Second, logSvc)
	start := time.Now()

	files, bytes, err := dl.Download(ctx, info.Images, targetDir, handle, stats)
	handle.MarkDone()
	pm.Close()

	if err != nil {
		logSvc.Errorf("Download failed: %v\n", err)
		util.RemoveIfEmpty(targetDir)
		return nil
	}

	if cfg.CBZ && len(files) > 0 {
		cbzOut := targetDir + ".cbz"
		if err := util.CreateCBZ(files, cbzOut); err != nil {
			logSvc.Errorf("CBZ failed: %v\n", err)
		} else {
			fmt.Printf("CBZ written: %s\n", cbzOut)
		}
	}

	fmt.Println()
	fmt.Printf("Download complete! %d images downloaded to %s\n", len(files), targetDir)
	if skipped := stats.Skipped.Load(); skipped > 0 {
		fmt.Printf("Skipped:  %d (already on disk)\n", skipped)
	}
	if failed := stats.Failed.Load(); failed > 0 {
		fmt.Printf("Failed:   %d\n", failed)
	}
	fmt.Printf("Data: %s\n", util.Human(bytes))
	fmt.Printf("Time: %s\n", time.Since(start).Round(time.Second))

	return nil
}
