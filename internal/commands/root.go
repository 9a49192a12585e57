package commands

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/adminfin-dev/adminfin/internal/api"
	"github.com/adminfin-dev/adminfin/internal/buildinfo"
	"github.com/adminfin-dev/adminfin/internal/config"
	"github.com/adminfin-dev/adminfin/internal/logging"
	"github.com/adminfin-dev/adminfin/internal/prompt"
)

// app carries what every subcommand needs once the root flags are parsed.
type app struct {
	configPath string
	apiURL     string
	yes        bool

	cfg    *config.Config
	logger *logrus.Logger
	client *api.Client
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:     "adminfin",
		Short:   "Financial administration client for people, classifications, movements and invoices",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "configuration file")
	rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (overrides config and environment)")
	rootCmd.PersistentFlags().BoolVarP(&a.yes, "yes", "y", false, "answer yes to every confirmation")

	rootCmd.AddCommand(
		newInitCommand(a),
		newPeopleCommand(a),
		newClassificationsCommand(a),
		newMovementsCommand(a),
		newInvoiceCommand(a),
		newLookupCommand(a),
		newRAGCommand(a),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadOrDefault(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithIndexTimeout(cfg.API.IndexTimeout),
		api.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	a.cfg, a.logger, a.client = cfg, logger, client
	return nil
}

func (a *app) confirmer(cmd *cobra.Command) prompt.Confirmer {
	if a.yes {
		return prompt.Always(true)
	}
	return prompt.Stdin(cmd.InOrStdin(), cmd.OutOrStdout())
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
