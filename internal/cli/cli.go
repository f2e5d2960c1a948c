// Package cli holds the pieces shared by the command line tools.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/menta2k/cognitive-demos/internal/config"
	"github.com/menta2k/cognitive-demos/internal/log"
	"github.com/menta2k/cognitive-demos/internal/utils"
)

// Version information set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

// Version returns the ldflags version, the module version, or "(devel)"
func Version() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// Commit returns the short VCS revision or "unknown"
func Commit() string {
	if commit != "" {
		return commit
	}
	if v := buildSetting("vcs.revision"); v != "" {
		if len(v) > 7 {
			return v[:7]
		}
		return v
	}
	return "unknown"
}

// Date returns the build or commit time or "unknown"
func Date() string {
	if date != "" {
		return date
	}
	if v := buildSetting("vcs.time"); v != "" {
		return v
	}
	return "unknown"
}

func buildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// NewVersionCmd creates the version command for the named tool
func NewVersionCmd(name string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", name, Version())
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", Commit())
			fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", Date())
		},
	}
}

// NewInitCmd creates the init command, which writes the default configuration
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `init writes the default settings as YAML to --output, or to the XDG
config path when no output is given. The service key is never written;
keep it in AI_SERVICE_KEY or a .env file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("output")
			if path == "" {
				path = config.GetConfigPath()
			}
			force, _ := cmd.Flags().GetBool("force")
			if !force && utils.FileExists(path) {
				return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
			}
			if err := config.Default().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration written to", path)
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output file path")
	cmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	return cmd
}

// AddGlobalFlags registers --config and --verbose on cmd
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "config file (default "+config.GetConfigPath()+")")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}

// Setup loads the configuration named by --config and builds the logger
func Setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewLogger(cmd.ErrOrStderr(), verbose)
	if asJSON, _ := cmd.Flags().GetBool("log-json"); asJSON {
		logger = log.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("configuration loaded", "endpoint", cfg.Service.Endpoint, "key", cfg.Service.Key)
	return cfg, logger, nil
}

// Execute runs cmd with a context cancelled on SIGINT or SIGTERM. Errors are
// printed to out as "Error: <msg>" and turned into exit code 1.
func Execute(cmd *cobra.Command, out io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(out, "Error:", err)
		return 1
	}
	return 0
}
