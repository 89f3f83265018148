package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	notionpkg "github.com/stock-logistic/quoting-cli/pkg/notion"
	sfpkg "github.com/stock-logistic/quoting-cli/pkg/salesforce"
)

var (
	syncNotion     bool
	syncSalesforce bool
)

var syncCmd = &cobra.Command{
	Use:   "sync <quote-id>",
	Short: "Push a quote to the Notion log and Salesforce",
	Long:  "Upserts a stored quote into the configured downstream systems. With no flags both targets are synced; --notion or --salesforce restricts to one.",
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

		both := !syncNotion && !syncSalesforce

		if syncNotion || both {
			if cfg.Notion.Token == "" || cfg.Notion.QuoteDB == "" {
				return eris.New("notion not configured (QUOTING_NOTION_TOKEN, QUOTING_NOTION_QUOTE_DB)")
			}
			log := notionpkg.NewQuoteLog(notionpkg.NewClient(cfg.Notion.Token), cfg.Notion.QuoteDB)
			pageID, err := log.Publish(ctx, q)
			if err != nil {
				return err
			}
			fmt.Printf("notion: %s → página %s\n", q.QuoteID, pageID)
		}

		if syncSalesforce || both {
			client, err := initSalesforce()
			if err != nil {
				return err
			}
			sync := sfpkg.NewQuoteSync(client, sfpkg.WithObjectName(cfg.Salesforce.ObjectName))
			recordID, err := sync.Sync(ctx, q)
			if err != nil {
				return err
			}
			fmt.Printf("salesforce: %s → registro %s\n", q.QuoteID, recordID)
		}

		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncNotion, "notion", false, "sync only to the Notion quote log")
	syncCmd.Flags().BoolVar(&syncSalesforce, "salesforce", false, "sync only to Salesforce")
	rootCmd.AddCommand(syncCmd)
}
