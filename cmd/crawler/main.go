package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"assembly_crawler/internal/app"
	"assembly_crawler/internal/config"
	"assembly_crawler/internal/crawler"
	"assembly_crawler/internal/db"
	"assembly_crawler/internal/models"

	"github.com/spf13/cobra"
)

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "crawler",
		Short:         "National Assembly bills and petitions crawler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the crawl scheduler and trigger server",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.LoadConfig(cfgPath)
				if err != nil {
					return err
				}
				a, err := app.New(cfg)
				if err != nil {
					return err
				}
				return a.Run()
			},
		},
		&cobra.Command{
			Use:   "bills",
			Short: "Run the bills crawl once and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOnce(cfgPath, "bills")
			},
		},
		&cobra.Command{
			Use:   "petitions",
			Short: "Run the petitions crawl once and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOnce(cfgPath, "petitions")
			},
		},
	)

	if err := root.Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}

func runOnce(cfgPath, kind string) error {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	database, err := db.NewMongoDB(cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close()

	var stats *models.CrawlStats
	switch kind {
	case "bills":
		stats, err = crawler.NewBillCrawler(cfg, database).Run(context.Background())
	case "petitions":
		stats, err = crawler.NewPetitionCrawler(cfg, database).Run(context.Background())
	default:
		return fmt.Errorf("unknown crawl type %q", kind)
	}
	if err != nil {
		return err
	}

	log.Printf("Done: fetched=%d new=%d updated=%d errors=%d in %s",
		stats.Fetched, stats.New, stats.Updated, stats.Errors,
		stats.EndTime.Sub(stats.StartTime).Round(time.Millisecond))
	return nil
}
