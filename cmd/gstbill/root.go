package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/gst-billing/internal/config"
	"github.com/garyjia/gst-billing/internal/container"
	"github.com/garyjia/gst-billing/pkg/utils"
)

var version = "1.0.0"

// cliEnv is the state shared by every subcommand of one invocation
type cliEnv struct {
	configPath string
	verbose    bool

	cfg      *config.Config
	logger   *zap.Logger
	app      *container.Container
	services *container.ServiceBundle
}

// run executes one command line and always releases the database afterwards
func run(args []string, out io.Writer) error {
	env := &cliEnv{}
	root := newRootCmd(env)
	root.SetArgs(args)
	root.SetOut(out)

	err := root.Execute()
	if closeErr := env.close(); err == nil {
		err = closeErr
	}
	return err
}

func newRootCmd(env *cliEnv) *cobra.Command {
	root := &cobra.Command{
		Use:   "gstbill",
		Short: "GST invoicing for a single business",
		Long: `gstbill creates GST tax invoices, tracks whether they are paid and
summarizes sales and GST payable over a period.

Data lives in a local SQLite file; exported PDFs go to the configured
output directory, one folder per month.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.open(cmd.Context())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&env.configPath, "config", "", "config file (default configs/config.yaml if present)")
	root.PersistentFlags().BoolVarP(&env.verbose, "verbose", "v", false, "log at info level")

	root.AddCommand(
		newCompanyCmd(env),
		newInvoiceCmd(env),
		newDashboardCmd(env),
		newRegisterCmd(env),
		newResetCmd(env),
	)
	return root
}

// open loads configuration and starts the container. Logs go to stderr so
// stdout carries only command output.
func (e *cliEnv) open(ctx context.Context) error {
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return err
	}
	e.cfg = cfg

	logCfg := utils.LoggerConfig{
		Level:      "warn",
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}
	if e.verbose {
		logCfg.Level = cfg.Logger.Level
	}
	if logCfg.OutputPath == "" || logCfg.OutputPath == "stdout" {
		logCfg.OutputPath = "stderr"
	}
	e.logger, err = utils.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	e.app, err = container.NewContainer(cfg.ToContainerConfig(), e.logger)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.app.Start(ctx); err != nil {
		return err
	}
	e.services = e.app.Services()
	return nil
}

func (e *cliEnv) close() error {
	if e.logger != nil {
		defer e.logger.Sync()
	}
	if e.app == nil {
		return nil
	}
	err := e.app.Close()
	e.app = nil
	return err
}
