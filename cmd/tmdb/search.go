package main

import (
	"fmt"

	"github.com/SaeedAdam/MoviePro/internal/tmdb"
	"github.com/spf13/cobra"
)

var optCount int

var searchCmd = &cobra.Command{
	Use:       "search <now_playing|popular|top_rated|upcoming>",
	Short:     "List one movie category",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"now_playing", "popular", "top_rated", "upcoming"},
	RunE: func(cmd *cobra.Command, args []string) error {
		category, ok := tmdb.ParseCategory(args[0])
		if !ok {
			return fmt.Errorf("%w: %q", tmdb.ErrUnknownCategory, args[0])
		}

		client, mapper := newClients()
		raw, err := client.MovieSearch(cmd.Context(), category, optCount)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, m := range mapper.MapSearchResults(raw) {
			fmt.Fprintf(out, "%d\t%s (%s)\t%.1f\n", m.ExternalID, m.Title, m.ReleaseDate, m.VoteAverage)
			if m.PosterURL != "" {
				fmt.Fprintf(out, "\t%s\n", m.PosterURL)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&optCount, "count", "n", 16, "number of results, 0 for the whole page")
	rootCmd.AddCommand(searchCmd)
}
