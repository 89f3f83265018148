package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/stock-logistic/quoting-cli/internal/convo"
	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/pricing"
)

var (
	quoteSessionID string
	quoteAsJSON    bool

	quoteOrigin      string
	quoteDestination string
	quoteWeight      float64
	quoteVolume      float64
	quoteCargo       string
	quoteService     string
	quoteDate        string
)

var quoteCmd = &cobra.Command{
	Use:   "quote [message]",
	Short: "Price a shipment in one shot",
	Long: "With a message argument the text runs through the conversation handler; " +
		"a message with every shipment detail produces a full quote, partial messages " +
		"print the next question. With --origin and --destination the shipment is " +
		"priced directly from flags, skipping the conversation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if quoteOrigin != "" || quoteDestination != "" {
			return quoteFromFlags(cmd, env)
		}

		if len(args) == 0 {
			return eris.New("provide a message or --origin and --destination")
		}

		sessionID := quoteSessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		reply, err := env.Handler.Message(ctx, sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}

		if quoteAsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(reply)
		}

		fmt.Println(reply.Text)
		if !reply.Completed {
			fmt.Fprintf(os.Stderr, "sesión: %s (repite el comando con --session para continuar)\n", sessionID)
		}
		return nil
	},
}

// quoteFromFlags prices directly, without a session, and stores the record.
func quoteFromFlags(cmd *cobra.Command, env *quoteEnv) error {
	ctx := cmd.Context()

	if quoteOrigin == "" || quoteDestination == "" {
		return eris.New("--origin and --destination are both required")
	}
	if quoteWeight <= 0 {
		return eris.New("--weight must be positive")
	}

	req := pricing.Request{
		Origin:      quoteOrigin,
		Destination: quoteDestination,
		WeightKg:    quoteWeight,
		VolumeM3:    quoteVolume,
		CargoType:   quoteCargo,
		ServiceType: model.ServiceTier(quoteService),
		PickupDate:  quoteDate,
	}
	res, err := env.Engine.Quote(ctx, req)
	if err != nil {
		return eris.Wrap(err, "quote")
	}

	rec := env.Builder.Build("", req, res)
	if err := env.Store.SaveQuote(ctx, rec); err != nil {
		return err
	}

	if quoteAsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Println(convo.SummaryText(rec))
	return nil
}

func init() {
	quoteCmd.Flags().StringVar(&quoteSessionID, "session", "", "continue an existing session id")
	quoteCmd.Flags().BoolVar(&quoteAsJSON, "json", false, "print the full result as JSON")
	quoteCmd.Flags().StringVar(&quoteOrigin, "origin", "", "origin city")
	quoteCmd.Flags().StringVar(&quoteDestination, "destination", "", "destination city")
	quoteCmd.Flags().Float64Var(&quoteWeight, "weight", 0, "cargo weight in kg")
	quoteCmd.Flags().Float64Var(&quoteVolume, "volume", 0, "cargo volume in m3")
	quoteCmd.Flags().StringVar(&quoteCargo, "cargo", "", "cargo type")
	quoteCmd.Flags().StringVar(&quoteService, "service", "", "service tier (economy|standard|express)")
	quoteCmd.Flags().StringVar(&quoteDate, "date", "", "pickup date (YYYY-MM-DD)")
	rootCmd.AddCommand(quoteCmd)
}
