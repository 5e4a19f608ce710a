package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/SaeedAdam/MoviePro/internal/config"
	"github.com/SaeedAdam/MoviePro/internal/service"
	"github.com/SaeedAdam/MoviePro/internal/tmdb"
	"github.com/SaeedAdam/MoviePro/internal/utils"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "tmdb",
	Short:         "Query the movie database with the server's client and mapper",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var optSkipImages bool

// skipImages 不下载图片
type skipImages struct{}

func (skipImages) EncodeFromURL(context.Context, string) ([]byte, error) { return nil, nil }

func newClients() (*tmdb.Client, *service.Mapper) {
	_ = godotenv.Load()
	cfg := config.Load()

	httpClient := utils.NewHTTPClient()
	var images service.ImageFetcher = service.NewImageService(httpClient)
	if optSkipImages {
		images = skipImages{}
	}
	return tmdb.NewClient(cfg.TMDB, httpClient), service.NewMapper(cfg.TMDB, images)
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&optSkipImages, "skip-images", false, "do not download poster and backdrop")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
