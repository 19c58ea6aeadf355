package main

import (
	"github.com/spf13/cobra"

	"github.com/alanyoungcy/polylens/internal/app"
	"github.com/alanyoungcy/polylens/internal/domain"
	"github.com/alanyoungcy/polylens/internal/present"
)

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, WebSocket hub and trending broadcast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app.New(c.cfg, c.logger)
			defer a.Close()
			return a.Serve(cmd.Context())
		},
	}
}

func (c *cli) searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Resolve a question, URL or slug to ranked markets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := joinArgs(args)
			res := c.services().Resolver.Resolve(cmd.Context(), q, limit)
			if c.jsonOut {
				return c.writeJSON(res)
			}
			return c.printer().Search(q, res.Markets)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of markets")
	return cmd
}

type viewOutput struct {
	Query   string              `json:"query"`
	Tier    string              `json:"tier,omitempty"`
	Market  *domain.Market      `json:"market"`
	History []domain.PricePoint `json:"history"`
}

func (c *cli) viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <query...>",
		Short: "Show the best matching market with its price history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := joinArgs(args)
			svc := c.services()

			res := svc.Resolver.Resolve(cmd.Context(), q, 1)
			best, ok := res.Best()
			if !ok {
				if c.jsonOut {
					return c.writeJSON(viewOutput{Query: q, History: []domain.PricePoint{}})
				}
				_, err := cmd.OutOrStdout().Write([]byte(present.NoMatch(q) + "\n"))
				return err
			}

			points := []domain.PricePoint{}
			if best.ConditionID != "" {
				points = svc.History.History(cmd.Context(), best.ConditionID)
			}
			if c.jsonOut {
				return c.writeJSON(viewOutput{Query: q, Tier: res.Tier, Market: &best, History: points})
			}
			return c.printer().View(best, points)
		},
	}
}

func (c *cli) trendingCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List the most active market of each top event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markets := c.services().Trending.Trending(cmd.Context(), limit)
			if c.jsonOut {
				return c.writeJSON(markets)
			}
			return c.printer().List("TOP TRENDING MARKETS", markets)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of markets")
	return cmd
}

func (c *cli) recentCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List open markets in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markets := c.services().Trending.Recent(cmd.Context(), limit)
			if c.jsonOut {
				return c.writeJSON(markets)
			}
			return c.printer().List("RECENT MARKETS", markets)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of markets")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <conditionID>",
		Short: "Print the sampled YES price series of a market",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			points := c.services().History.History(cmd.Context(), args[0])
			if c.jsonOut {
				return c.writeJSON(points)
			}
			return c.printer().History(args[0], points)
		},
	}
}
