package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var personCmd = &cobra.Command{
	Use:   "person <id>",
	Short: "Fetch one person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid person id %q", args[0])
		}

		client, mapper := newClients()
		raw, err := client.ActorDetail(cmd.Context(), id)
		if err != nil {
			return err
		}
		actor := mapper.MapActorDetail(*raw)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\nBorn: %s, %s\n%s\n\n%s\n", actor.Name, actor.Birthday, actor.PlaceOfBirth, actor.ImageURL, actor.Biography)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(personCmd)
}
