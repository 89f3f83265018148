package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stock-logistic/quoting-cli/internal/convo"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive quoting conversation",
	Long:  "Reads customer messages from stdin and replies on stdout until the quote is complete or EOF. Use --session to resume an earlier conversation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		sessionID := chatSessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		} else {
			if reply, err := env.Handler.Resume(ctx, sessionID); err == nil && reply.Text != "" {
				fmt.Println(reply.Text)
			}
		}
		fmt.Fprintf(os.Stderr, "sesión: %s (escribe 'salir' para terminar)\n", sessionID)

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if strings.EqualFold(text, "salir") {
				break
			}

			reply, err := env.Handler.Message(ctx, sessionID, text)
			if err != nil {
				zap.L().Error("chat turn failed", zap.Error(err))
				fmt.Println("Lo siento, ha ocurrido un error. Inténtalo de nuevo.")
				continue
			}

			fmt.Println(reply.Text)
			if reply.Completed {
				printQuoteRef(reply)
			}
		}

		return scanner.Err()
	},
}

func printQuoteRef(reply *convo.Reply) {
	if reply.Quote == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "cotización guardada: %s\n", reply.Quote.QuoteID)
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "resume an existing session id")
	rootCmd.AddCommand(chatCmd)
}
