package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Ilia01/attachsync/internal/backlog"
	"github.com/Ilia01/attachsync/internal/config"
	"github.com/Ilia01/attachsync/internal/download"
	"github.com/Ilia01/attachsync/internal/mirror"
	"github.com/Ilia01/attachsync/internal/utils"
)

type syncRequest struct {
	Settings  config.Settings
	ProjectID string
}

var remoteFactory = func(settings config.Settings) mirror.Remote {
	return backlog.NewClient(settings)
}

func handleSync(cmd *cobra.Command, req syncRequest) error {
	settings := req.Settings
	logger.Debug("starting sync",
		"space", settings.SpaceID,
		"host", settings.Host,
		"project", req.ProjectID,
		"api_key", config.MaskToken(settings.APIKey),
		"page_size", settings.PageSize,
		"output", settings.OutputDir,
	)

	runner := &mirror.Runner{
		Remote:     remoteFactory(settings),
		Downloader: download.New(),
		BaseDir:    settings.OutputDir,
		SpaceID:    settings.SpaceID,
		Out:        cmd.OutOrStdout(),
		Err:        cmd.ErrOrStderr(),
		Logger:     logger,
	}
	runner.Run(cmd.Context(), req.ProjectID)

	// Per-issue failures were already reported; only an interrupt changes the exit code.
	return cmd.Context().Err()
}

// resolveSync merges config file, environment and flags, in increasing order
// of precedence, and checks that every required value is present.
func resolveSync(cmd *cobra.Command, opts syncOptions, configFile string) (syncRequest, error) {
	settings, err := loadSettings(configFile)
	if errors.Is(err, config.ErrConfigNotFound) && configFile == "" {
		settings, err = &config.Settings{}, nil
	}
	if err != nil {
		return syncRequest{}, err
	}
	settings.ApplyEnv(os.LookupEnv)

	flags := cmd.Flags()
	if flags.Changed("api-key") {
		settings.APIKey = opts.APIKey
	}
	if flags.Changed("space") {
		settings.SpaceID = opts.SpaceID
	}
	if flags.Changed("host") {
		settings.Host = opts.Host
	}
	if flags.Changed("page-size") {
		if opts.PageSize < 1 || opts.PageSize > config.MaxPageSize {
			return syncRequest{}, fmt.Errorf("--page-size must be between 1 and %d", config.MaxPageSize)
		}
		settings.PageSize = opts.PageSize
	}
	if flags.Changed("output") {
		settings.OutputDir = opts.OutputDir
	}
	settings.ApplyDefaults()

	missing := settings.Missing()
	projectID := strings.TrimSpace(opts.ProjectID)
	if projectID == "" {
		missing = append(missing, "-p PROJECT_ID")
	}
	if len(missing) > 0 {
		return syncRequest{}, fmt.Errorf("%w: %s", config.ErrMissingArgument, strings.Join(missing, ", "))
	}

	return syncRequest{Settings: *settings, ProjectID: projectID}, nil
}

func isMissingArgument(err error) bool {
	return errors.Is(err, config.ErrMissingArgument)
}

func handleConfigShow(cmd *cobra.Command, configFile string) error {
	path, err := configPath(configFile)
	if err != nil {
		return err
	}
	settings, err := loadSettings(configFile)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return fmt.Errorf("configuration not found at %s. Run 'attachsync config set' first", path)
		}
		return err
	}

	out := cmd.OutOrStdout()
	pal := utils.NewPalette(out)
	fmt.Fprintln(out, pal.Cyan("Current Configuration"))
	fmt.Fprintf(out, "  %s %s\n", pal.Dim("file:"), path)
	for _, key := range config.Keys {
		value, _ := settings.Get(key)
		if key == "api_key" {
			value = pal.Yellow(config.MaskToken(value))
		}
		fmt.Fprintf(out, "  %s %s\n", pal.Dim(key+":"), value)
	}
	return nil
}

func handleConfigSet(cmd *cobra.Command, configFile, key, value string) error {
	settings, err := loadSettings(configFile)
	if errors.Is(err, config.ErrConfigNotFound) {
		settings, err = &config.Settings{}, nil
	}
	if err != nil {
		return err
	}

	if err := settings.Set(key, value); err != nil {
		return err
	}
	if configFile == "" {
		err = settings.Save()
	} else {
		err = settings.SaveFile(configFile)
	}
	if err != nil {
		return err
	}

	shown := value
	if key == "api_key" {
		shown = config.MaskToken(value)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, utils.NewPalette(out).Green(fmt.Sprintf("✓ Updated %s to: %s", key, shown)))
	return nil
}

func handleConfigPath(cmd *cobra.Command, configFile string) error {
	path, err := configPath(configFile)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func configPath(configFile string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	return config.ConfigPath()
}

func loadSettings(configFile string) (*config.Settings, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}
