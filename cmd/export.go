package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/openfiling/disclosure-cli/internal/model"
	"github.com/openfiling/disclosure-cli/internal/store"
	"github.com/openfiling/disclosure-cli/internal/web"
)

var (
	exportOut     string
	exportTicker  string
	exportChamber string
	exportLimit   int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trades as CSV to stdout or a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.NewPostgres(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer st.Close()

		trades, err := st.ListTrades(ctx, store.TradeFilter{
			Ticker:  exportTicker,
			Chamber: model.Chamber(exportChamber),
			Limit:   exportLimit,
		})
		if err != nil {
			return err
		}

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", exportOut)
			}
			defer f.Close()
			out = f
		}

		return web.WriteTradesCSV(out, trades)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportTicker, "ticker", "", "filter by ticker")
	exportCmd.Flags().StringVar(&exportChamber, "chamber", "", "filter by chamber")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 10000, "max rows")
	rootCmd.AddCommand(exportCmd)
}
