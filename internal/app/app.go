package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ilia01/attachsync/internal/config"
)

var (
	syncHandler       = handleSync
	configShowHandler = handleConfigShow
	configSetHandler  = handleConfigSet
	configPathHandler = handleConfigPath
)

type syncOptions struct {
	APIKey    string
	SpaceID   string
	ProjectID string
	Host      string
	PageSize  int
	OutputDir string
}

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var (
		opts       syncOptions
		configFile string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "attachsync -k API_KEY -s SPACE_ID -p PROJECT_ID",
		Short: "Mirror Backlog issue attachments to disk",
		Long: "attachsync downloads every attachment of every issue in a Backlog project into\n" +
			"<output>/<space>/<issue key>-<summary>/<attachment id>-<name>.\n" +
			"Files that already exist are skipped, so an interrupted run can simply be repeated.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(cmd.ErrOrStderr(), verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := resolveSync(cmd, opts, configFile)
			if err != nil {
				if isMissingArgument(err) {
					fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
				}
				return err
			}
			return syncHandler(cmd, req)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default ~/.attachsync/config.yaml)")

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.APIKey, "api-key", "k", "", "Backlog API key")
	flags.StringVarP(&opts.SpaceID, "space", "s", "", "Backlog space id")
	flags.StringVarP(&opts.ProjectID, "project", "p", "", "Backlog project id")
	flags.StringVar(&opts.Host, "host", config.DefaultHost, "Backlog API host")
	flags.IntVar(&opts.PageSize, "page-size", config.DefaultPageSize, "Issues requested per page (max 100)")
	flags.StringVarP(&opts.OutputDir, "output", "o", config.DefaultOutputDir, "Directory the space folder is created in")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	configShowCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return configShowHandler(cmd, configFile)
		},
	}

	configSetCmd := &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Set a configuration value",
		Long:      "Set a configuration value. Keys: " + strings.Join(config.Keys, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.Keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			return configSetHandler(cmd, configFile, args[0], args[1])
		},
	}

	configPathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show config path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return configPathHandler(cmd, configFile)
		},
	}

	configCmd.AddCommand(configShowCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)

	return rootCmd
}
