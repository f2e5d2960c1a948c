package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/menta2k/cognitive-demos/internal/cli"
	"github.com/menta2k/cognitive-demos/internal/config"
	"github.com/menta2k/cognitive-demos/pkg/azure"
	"github.com/menta2k/cognitive-demos/pkg/language"
)

func run() int {
	return cli.Execute(NewRootCmd(), os.Stdout)
}

// NewRootCmd creates the languagedetect command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "languagedetect",
		Short: "Detect the language of text with Azure AI Language",
		Long: `languagedetect sends text to the language detection task of Azure AI
Language and shows the name of the detected language, either through a small
web form (serve) or an interactive prompt (console).

The resource is read from AI_SERVICE_ENDPOINT and AI_SERVICE_KEY (a .env file
in the working directory is loaded first).`,
		Version:       cli.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.AddGlobalFlags(cmd)
	cmd.PersistentFlags().String("country-hint", "", "ISO 3166-1 alpha-2 country hint")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewConsoleCmd())
	cmd.AddCommand(cli.NewInitCmd())
	cmd.AddCommand(cli.NewVersionCmd("languagedetect"))
	return cmd
}

// newLanguageClient builds the detector from the loaded configuration
func newLanguageClient(cmd *cobra.Command) (*language.Client, *config.Config, *slog.Logger, error) {
	cfg, logger, err := cli.Setup(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	if cmd.Flags().Changed("country-hint") {
		cfg.Server.CountryHint, _ = cmd.Flags().GetString("country-hint")
	}
	if err := cfg.ValidateService(); err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.ValidateLanguage(); err != nil {
		return nil, nil, nil, err
	}

	transport, err := azure.NewClient(cfg.Service.Endpoint, cfg.Service.Key, cfg.Service.Timeout, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return language.NewClient(transport, cfg.Server.CountryHint), cfg, logger, nil
}
