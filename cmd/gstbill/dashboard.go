package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/garyjia/gst-billing/internal/domain/dashboard"
	"github.com/garyjia/gst-billing/pkg/utils"
)

type filterFlags struct {
	window string
	start  string
	end    string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.window, "filter", "", "today, 7days, 30days or custom (default from config)")
	cmd.Flags().StringVar(&f.start, "start", "", "custom period start YYYY-MM-DD")
	cmd.Flags().StringVar(&f.end, "end", "", "custom period end YYYY-MM-DD")
}

func (f *filterFlags) filter(env *cliEnv) (dashboard.Filter, error) {
	window := f.window
	if window == "" {
		window = env.cfg.Billing.DefaultFilter
	}
	return dashboard.NewFilter(window, f.start, f.end)
}

func newDashboardCmd(env *cliEnv) *cobra.Command {
	var flags filterFlags
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show sales and GST payable for a period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.filter(env)
			if err != nil {
				return err
			}
			s, err := env.services.Dashboard.Summary(cmd.Context(), f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Period:            %s\n", s.PeriodLabel)
			fmt.Fprintf(out, "Total Sales:       %s\n", utils.FormatINR(s.TotalSales))
			fmt.Fprintf(out, "Total GST Payable: %s\n", utils.FormatINR(s.TotalGSTPayable))
			fmt.Fprintf(out, "Invoices:          %d\n", s.InvoiceCount)
			fmt.Fprintf(out, "Outstanding:       %s (%d overdue)\n", utils.FormatINR(s.Outstanding), s.OverdueCount)

			if len(s.Recent) > 0 {
				fmt.Fprintln(out, "\nRecent invoices:")
				for _, v := range s.Recent {
					fmt.Fprintf(out, "  %s  %s  %-24s %14s  %s\n",
						v.InvoiceNo, utils.FormatDate(v.Date), v.CustomerName, utils.FormatINR(v.GrandTotal), v.StatusLabel)
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newRegisterCmd(env *cliEnv) *cobra.Command {
	var (
		flags  filterFlags
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Export the invoices of a period as an XLSX register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := flags.filter(env)
			if err != nil {
				return err
			}
			doc, err := env.services.Dashboard.Register(cmd.Context(), f)
			if err != nil {
				return err
			}
			return writeDocument(cmd.OutOrStdout(), filepath.Join(outDir, doc.FileName), doc.Content)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write the workbook to")
	return cmd
}
