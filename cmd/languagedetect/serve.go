package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/menta2k/cognitive-demos/pkg/webform"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the language detection web form",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().StringP("addr", "a", "", "listen address (default 127.0.0.1:5000)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	detector, cfg, logger, err := newLanguageClient(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := webform.NewServer(detector, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s/ (Ctrl+C to stop)\n", cfg.Server.Addr)
	return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
}
