package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stock-logistic/quoting-cli/internal/export"
	"github.com/stock-logistic/quoting-cli/internal/model"
	"github.com/stock-logistic/quoting-cli/internal/store"
)

var (
	exportSession string
	exportOut     string
	exportJSONDir string
	exportFTP     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export quotes as an XLSX book, JSON documents, or to the partner FTP",
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

		quotes, err := st.ListQuotes(ctx, store.QuoteFilter{SessionID: exportSession})
		if err != nil {
			return err
		}
		if len(quotes) == 0 {
			fmt.Println("no hay cotizaciones que exportar")
			return nil
		}

		records := make([]*model.QuoteRecord, len(quotes))
		for i := range quotes {
			records[i] = &quotes[i]
		}

		out := exportOut
		if out == "" {
			if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
				return err
			}
			name := export.WorkbookName(time.Now().Format("2006-01-02"))
			out = filepath.Join(cfg.Export.Dir, name)
		}

		if err := export.WriteWorkbook(out, records); err != nil {
			return err
		}
		fmt.Printf("%d cotizaciones exportadas a %s\n", len(records), out)

		if exportJSONDir != "" {
			paths, err := export.WriteDocuments(exportJSONDir, records)
			if err != nil {
				return err
			}
			fmt.Printf("%d documentos JSON escritos en %s\n", len(paths), exportJSONDir)
		}

		if exportFTP {
			if cfg.Export.FTP.Host == "" {
				return eris.New("ftp host not configured (QUOTING_EXPORT_FTP_HOST)")
			}
			publisher := export.NewFTPPublisher(cfg.Export.FTP)
			if err := publisher.Publish(ctx, out, filepath.Base(out)); err != nil {
				return err
			}
			zap.L().Info("quote book published", zap.String("host", cfg.Export.FTP.Host))
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportSession, "session", "", "export only quotes from one session")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "workbook path (default exports/cotizaciones-<date>.xlsx)")
	exportCmd.Flags().StringVar(&exportJSONDir, "json-dir", "", "also write one JSON document per quote into this directory")
	exportCmd.Flags().BoolVar(&exportFTP, "ftp", false, "upload the workbook to the partner FTP drop")
	rootCmd.AddCommand(exportCmd)
}
