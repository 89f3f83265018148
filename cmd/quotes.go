package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stock-logistic/quoting-cli/internal/store"
)

var (
	quotesSession string
	quotesLimit   int
	quotesOffset  int
)

var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Inspect generated quotes",
}

var quotesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored quotes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		quotes, err := st.ListQuotes(ctx, store.QuoteFilter{
			SessionID: quotesSession,
			Limit:     quotesLimit,
			Offset:    quotesOffset,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COTIZACIÓN\tRUTA\tSERVICIO\tTOTAL EUR\tDÍAS\tALERTAS")
		for _, q := range quotes {
			fmt.Fprintf(w, "%s\t%s → %s\t%s\t%.2f\t%d\t%d\n",
				q.QuoteID, q.Route.Origin, q.Route.Destination,
				q.ServiceType, q.Costs.Total, q.Timing.EstimatedDays, q.CriticalAlerts,
			)
		}
		return w.Flush()
	},
}

var quotesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a quote as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		q, err := st.GetQuote(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(q)
	},
}

func init() {
	quotesListCmd.Flags().StringVar(&quotesSession, "session", "", "filter by session id")
	quotesListCmd.Flags().IntVar(&quotesLimit, "limit", 50, "maximum quotes to list")
	quotesListCmd.Flags().IntVar(&quotesOffset, "offset", 0, "listing offset")
	quotesCmd.AddCommand(quotesListCmd, quotesShowCmd)
	rootCmd.AddCommand(quotesCmd)
}
