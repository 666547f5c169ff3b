package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"krjobs-scraper/internal/config"
	"krjobs-scraper/internal/reporter"
	"krjobs-scraper/internal/runner"
	"krjobs-scraper/internal/storage"
)

var (
	flagSites      []string
	flagNoDeep     bool
	flagFormat     string
	flagStorage    string
	flagConfigPath string
	flagStatsOnly  bool
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Scrape Korean job boards for foreigner-friendly postings",
	Long: `Scrapes kowork.kr, komate.saramin.co.kr and www.klik.co.kr for job
postings aimed at foreign workers, deduplicates them against storage
and saves the new ones.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringSliceVar(&flagSites, "sites", nil, "sites to scrape (kowork, komate, klik); default all")
	rootCmd.Flags().BoolVar(&flagNoDeep, "no-deep", false, "skip detail pages, save list data only")
	rootCmd.Flags().StringVar(&flagFormat, "format", "", "local file format override (csv or xlsx)")
	rootCmd.Flags().StringVar(&flagStorage, "storage", "", "storage backend override (local or supabase)")
	rootCmd.Flags().StringVar(&flagConfigPath, "config", config.DefaultPath, "config file path")
	rootCmd.Flags().BoolVar(&flagStatsOnly, "stats", false, "print storage stats and exit")
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg := config.LoadFrom(flagConfigPath)
	if flagFormat != "" {
		cfg.FileFormat = flagFormat
	}
	if flagStorage != "" {
		cfg.StorageType = flagStorage
	}

	store, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	if s, ok := store.(*storage.SupabaseStorage); ok {
		defer s.Close()
		if err := s.Migrate(ctx); err != nil {
			return err
		}
	}

	if flagStatsOnly {
		return printStats(ctx, store)
	}

	summary := runner.New(cfg, store).Run(ctx, flagSites, !flagNoDeep)
	printSummary(summary)

	var runErr error
	if len(summary.Errors) > 0 {
		runErr = fmt.Errorf("%d site(s) failed: %s", len(summary.Errors), strings.Join(summary.Errors, "; "))
	}

	if cfg.TelegramToken != "" {
		bot, err := reporter.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram reporter unavailable: %v", err)
		} else {
			if err := bot.SendSummary(summary); err != nil {
				log.Printf("⚠️ Telegram summary failed: %v", err)
			}
			if runErr != nil {
				if err := bot.SendError(runErr); err != nil {
					log.Printf("⚠️ Telegram error notice failed: %v", err)
				}
			}
		}
	}

	return runErr
}

func printSummary(summary *runner.Summary) {
	fmt.Println("==================================================")
	fmt.Println("Scrape summary")
	fmt.Println("==================================================")
	for site, result := range summary.Sites {
		if result.Status == "ok" {
			fmt.Printf("  %-8s %d new postings\n", site, result.NewPostings)
		} else {
			fmt.Printf("  %-8s FAILED: %s\n", site, result.Error)
		}
	}
	fmt.Printf("Total new: %d (%.1fs)\n", summary.TotalNew, summary.Duration().Seconds())
	if summary.StorageStats != nil {
		fmt.Printf("Stored total: %d\n", summary.StorageStats.Total)
	}
}

func printStats(ctx context.Context, store storage.Storage) error {
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Total postings: %d\n", stats.Total)
	for source, count := range stats.BySource {
		fmt.Printf("  %-8s %d\n", source, count)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
