package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/lizd/internal/search"
)

var (
	searchTopK   int
	searchAnswer bool
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchTopK, "top-k", 0, "Result count, clamped to [1,25] (default: SEARCH_TOP_K_DEFAULT)")
	searchCmd.Flags().BoolVar(&searchAnswer, "answer", false, "Format the results into a prose answer")
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Run a one-shot query against the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := initClients()
		if err != nil {
			return err
		}
		defer c.Close()

		var formatter search.Formatter
		if searchAnswer {
			formatter, err = search.NewLiz(search.LizConfig{
				APIKey:      c.cfg.OpenAI.APIKey,
				Model:       c.cfg.Chat.Model,
				Temperature: c.cfg.Chat.Temperature,
			})
			if err != nil {
				return err
			}
		}

		svc, err := search.NewService(c.embedder, c.store, formatter, c.logger.Named("search"), search.Config{
			Collection:  c.cfg.Qdrant.Collection,
			TopKDefault: c.cfg.Search.TopKDefault,
			TopKMax:     c.cfg.Search.TopKMax,
		})
		if err != nil {
			return err
		}

		topK := searchTopK
		if topK == 0 && !cmd.Flags().Changed("top-k") {
			topK = svc.DefaultTopK()
		}

		if searchAnswer {
			resp, err := svc.SearchWithAnswer(cmd.Context(), args[0], topK)
			if err != nil {
				return err
			}
			fmt.Println(resp.Answer)
			return nil
		}

		resp, err := svc.Search(cmd.Context(), args[0], topK)
		if err != nil {
			return err
		}

		fmt.Printf("%d result(s) for %q:\n", resp.TotalFound, resp.Query)
		for _, r := range resp.Results {
			fmt.Printf("  %.4f  %s — %s\n", r.Score, r.ID, r.Title)
		}
		return nil
	},
}
