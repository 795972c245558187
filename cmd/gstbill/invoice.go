package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/garyjia/gst-billing/internal/application/service"
	"github.com/garyjia/gst-billing/internal/domain/billing"
	"github.com/garyjia/gst-billing/internal/domain/entity"
	"github.com/garyjia/gst-billing/pkg/utils"
)

// invoiceFlags collects the invoice form from the command line
type invoiceFlags struct {
	date     string
	customer string
	gstin    string
	address  string
	items    []string
}

func (f *invoiceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "invoice date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&f.gstin, "gstin", "", "customer GSTIN")
	cmd.Flags().StringVar(&f.address, "address", "", "customer address")
	cmd.Flags().StringArrayVar(&f.items, "item", nil, `line item "description|hsn|qty|rate[|gst%]", repeatable`)
}

func (f *invoiceFlags) input() (billing.InvoiceDraftInput, error) {
	input := billing.InvoiceDraftInput{
		CustomerName:    f.customer,
		CustomerGSTIN:   f.gstin,
		CustomerAddress: f.address,
	}
	if f.date != "" {
		d, err := civil.ParseDate(f.date)
		if err != nil {
			return input, entity.NewValidationError("date", "invalid date, expected YYYY-MM-DD")
		}
		input.Date = d
	}
	for i, raw := range f.items {
		item, err := parseItem(raw)
		if err != nil {
			return input, entity.NewValidationError(fmt.Sprintf("items[%d]", i), err.Error())
		}
		input.Items = append(input.Items, item)
	}
	return input, nil
}

// parseItem reads "description|hsn|qty|rate[|gst%]". Blank numbers stay unset,
// the same as empty form fields.
func parseItem(raw string) (billing.ItemInput, error) {
	parts := strings.Split(raw, "|")
	if len(parts) < 4 || len(parts) > 5 {
		return billing.ItemInput{}, fmt.Errorf("expected description|hsn|qty|rate[|gst%%], got %q", raw)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	item := billing.ItemInput{
		Description: parts[0],
		HSN:         parts[1],
		Quantity:    billing.ParseNumber(parts[2]),
		Rate:        billing.ParseNumber(parts[3]),
	}
	if len(parts) == 5 {
		item.GSTPercent = billing.ParseNumber(strings.TrimSuffix(parts[4], "%"))
	}
	return item, nil
}

func newInvoiceCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoice",
		Aliases: []string{"inv"},
		Short:   "Create, list and export invoices",
	}
	cmd.AddCommand(
		newInvoiceComputeCmd(env, "preview", "Compute an invoice without saving it"),
		newInvoiceComputeCmd(env, "draft", "Save an unfinished invoice as a draft"),
		newInvoiceComputeCmd(env, "create", "Save a final invoice and export its PDF"),
		newInvoiceListCmd(env),
		newInvoiceShowCmd(env),
		newInvoicePaidCmd(env, "paid", true),
		newInvoicePaidCmd(env, "unpaid", false),
		newInvoiceDeleteCmd(env),
		newInvoicePDFCmd(env),
		newInvoiceShareCmd(env),
	)
	return cmd
}

func newInvoiceComputeCmd(env *cliEnv, mode, short string) *cobra.Command {
	var flags invoiceFlags
	cmd := &cobra.Command{
		Use:   mode,
		Short: short,
		Example: fmt.Sprintf(`  gstbill invoice %s --customer "Sharma Stores" --gstin 27AAPFU0939F1ZV \
    --item "Consulting|998314|3|1500|18" --item "Travel||1|2400|"`, mode),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := flags.input()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			switch mode {
			case "preview":
				view, err := env.services.Invoice.Preview(ctx, input)
				if err != nil {
					return err
				}
				printInvoice(out, view)
			case "draft":
				view, err := env.services.Invoice.SaveDraft(ctx, input)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Draft %s saved.\n", view.InvoiceNo)
			default:
				result, err := env.services.Invoice.Generate(ctx, input)
				var exportErr *entity.ExportError
				if errors.As(err, &exportErr) && result != nil {
					fmt.Fprintf(out, "Invoice %s saved, but the PDF could not be exported. Retry with: gstbill invoice pdf %s\n",
						result.Invoice.InvoiceNo, billing.InvoiceNoDigits(result.Invoice.InvoiceNo))
					return err
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Invoice %s saved. Grand total %s\n", result.Invoice.InvoiceNo, utils.FormatINR(result.Invoice.GrandTotal))
				fmt.Fprintf(out, "PDF: %s\n", result.Document.SavedPath)
			}
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newInvoiceListCmd(env *cliEnv) *cobra.Command {
	var query service.ListQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			views, err := env.services.Invoice.List(cmd.Context(), query)
			if err != nil {
				return err
			}
			if len(views) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No invoices found.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NO\tDATE\tCUSTOMER\tAMOUNT\tSTATUS")
			for _, v := range views {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					v.InvoiceNo, utils.FormatDate(v.Date), v.CustomerName, utils.FormatINR(v.GrandTotal), v.StatusLabel)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&query.Status, "status", "all", "all, draft, paid, overdue or unpaid")
	cmd.Flags().StringVarP(&query.Search, "search", "q", "", "match customer name or invoice number")
	return cmd
}

func newInvoiceShowCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "show <invoice-no>",
		Short: "Print one invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := env.services.Invoice.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printInvoice(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func newInvoicePaidCmd(env *cliEnv, use string, paid bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <invoice-no>",
		Short: "Mark an invoice as " + use,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := env.services.Invoice.MarkPaid(cmd.Context(), args[0], paid)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s is now %s.\n", view.InvoiceNo, view.StatusLabel)
			return nil
		},
	}
}

func newInvoiceDeleteCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <invoice-no>",
		Short: "Delete an invoice; its number is not reused",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.services.Invoice.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s deleted.\n", billing.NormalizeInvoiceNo(args[0]))
			return nil
		},
	}
}

func newInvoicePDFCmd(env *cliEnv) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "pdf <invoice-no>",
		Short: "Export an invoice PDF again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := env.services.Invoice.ExportPDF(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if outDir == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "PDF: %s\n", doc.SavedPath)
				return nil
			}
			return writeDocument(cmd.OutOrStdout(), filepath.Join(outDir, doc.FileName), doc.Content)
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "also copy the PDF into this directory")
	return cmd
}

func newInvoiceShareCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "share <invoice-no>",
		Short: "Print the share text for an invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := env.services.Invoice.ShareText(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func printInvoice(w io.Writer, v *service.InvoiceView) {
	fmt.Fprintf(w, "Invoice %s  [%s]\n", v.InvoiceNo, v.StatusLabel)
	fmt.Fprintf(w, "Date:     %s\n", utils.FormatDate(v.Date))
	fmt.Fprintf(w, "Customer: %s\n", v.CustomerName)
	if v.CustomerGSTIN != "" {
		fmt.Fprintf(w, "GSTIN:    %s\n", v.CustomerGSTIN)
	}
	if v.CustomerAddress != "" {
		fmt.Fprintf(w, "Address:  %s\n", v.CustomerAddress)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tDESCRIPTION\tHSN/SAC\tQTY\tRATE\tGST\tAMOUNT\t")
	for i, item := range v.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			i+1, item.Description, item.HSN, item.Quantity.String(),
			utils.FormatINR(item.Rate), utils.FormatPercent(item.GSTPercent),
			utils.FormatINR(item.Amount.Add(item.GSTAmount)))
	}
	tw.Flush()

	fmt.Fprintf(w, "Subtotal:    %s\n", utils.FormatINR(v.Subtotal))
	fmt.Fprintf(w, "Total GST:   %s\n", utils.FormatINR(v.TotalGST))
	fmt.Fprintf(w, "Grand Total: %s\n", utils.FormatINR(v.GrandTotal))
}

func writeDocument(w io.Writer, path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}
