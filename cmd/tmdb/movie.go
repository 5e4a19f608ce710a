package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var movieCmd = &cobra.Command{
	Use:   "movie <id>",
	Short: "Fetch and map one movie without saving it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid movie id %q", args[0])
		}

		client, mapper := newClients()
		raw, err := client.MovieDetail(cmd.Context(), id)
		if err != nil {
			return err
		}
		movie, err := mapper.MapMovieDetail(cmd.Context(), raw)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%d) [%s] %d min, %.1f\n", movie.Title, movie.ReleaseDate.Year(), movie.Rating, movie.Runtime, movie.VoteAverage)
		if movie.Tagline != "" {
			fmt.Fprintf(out, "%s\n", movie.Tagline)
		}
		fmt.Fprintf(out, "Genres: %s\n", movie.Genres)
		if movie.TrailerURL != "" {
			fmt.Fprintf(out, "Trailer: %s\n", movie.TrailerURL)
		}
		fmt.Fprintf(out, "Poster: %d bytes %s, backdrop: %d bytes %s\n",
			len(movie.Poster), movie.PosterType, len(movie.Backdrop), movie.BackdropType)
		for _, c := range movie.Cast {
			fmt.Fprintf(out, "  cast %d\t%s as %s\n", c.PersonID, c.Name, c.Character)
		}
		for _, c := range movie.Crew {
			fmt.Fprintf(out, "  crew %d\t%s, %s\n", c.PersonID, c.Name, c.Job)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(movieCmd)
}
