package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/garyjia/gst-billing/internal/application/service"
	"github.com/garyjia/gst-billing/internal/domain/entity"
)

func newCompanyCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Show or set up the business profile printed on invoices",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the company profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			company, err := env.services.Company.Get(cmd.Context())
			if err != nil {
				return err
			}
			printCompany(cmd.OutOrStdout(), company)
			return nil
		},
	}

	var (
		input      service.CompanyInput
		logoPath   string
		removeLogo bool
	)
	setup := &cobra.Command{
		Use:   "setup",
		Short: "Create or edit the company profile",
		Example: `  gstbill company setup --name "Acme Traders" --gstin 27AAPFU0939F1ZV \
    --address "12 MG Road, Pune" --phone "+91 98765 43210" --logo logo.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if logoPath != "" {
				data, err := os.ReadFile(logoPath)
				if err != nil {
					return fmt.Errorf("read logo: %w", err)
				}
				input.Logo = data
			}

			company, err := env.services.Company.Setup(ctx, input)
			if err != nil {
				return err
			}
			if removeLogo {
				if company, err = env.services.Company.RemoveLogo(ctx); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Company profile saved.")
			printCompany(cmd.OutOrStdout(), company)
			return nil
		},
	}
	setup.Flags().StringVar(&input.Name, "name", "", "business name (required)")
	setup.Flags().StringVar(&input.GSTIN, "gstin", "", "15-character GSTIN")
	setup.Flags().StringVar(&input.Address, "address", "", "postal address")
	setup.Flags().StringVar(&input.Phone, "phone", "", "phone number")
	setup.Flags().StringVar(&input.Email, "email", "", "email address")
	setup.Flags().StringVar(&logoPath, "logo", "", "logo image file (PNG, JPEG, GIF, BMP or TIFF)")
	setup.Flags().BoolVar(&removeLogo, "remove-logo", false, "drop the stored logo")
	setup.MarkFlagsMutuallyExclusive("logo", "remove-logo")

	cmd.AddCommand(show, setup)
	return cmd
}

func printCompany(w io.Writer, c *entity.CompanyProfile) {
	fmt.Fprintf(w, "Name:    %s\n", c.Name)
	fmt.Fprintf(w, "GSTIN:   %s\n", c.GSTIN)
	fmt.Fprintf(w, "Address: %s\n", c.Address)
	fmt.Fprintf(w, "Phone:   %s\n", c.Phone)
	fmt.Fprintf(w, "Email:   %s\n", c.Email)
	logo := "none"
	if c.HasLogo() {
		logo = "stored"
	}
	fmt.Fprintf(w, "Logo:    %s\n", logo)
}
