package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/menta2k/cognitive-demos/pkg/client"
	"github.com/menta2k/cognitive-demos/pkg/language"
)

const consolePrompt = "Enter text (or 'quit' to exit): "

// NewConsoleCmd creates the console command
func NewConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Detect languages from an interactive prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			detector, _, logger, err := newLanguageClient(cmd)
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt: consolePrompt,
				Stdin:  io.NopCloser(cmd.InOrStdin()),
				Stdout: cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			logger.Debug("console started")
			return console(cmd, rl, detector)
		},
	}
}

// lineReader is the part of readline the console loop needs
type lineReader interface {
	Readline() (string, error)
}

func console(cmd *cobra.Command, rl lineReader, detector client.LanguageDetector) error {
	out := cmd.OutOrStdout()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if q := strings.ToLower(strings.TrimSpace(line)); q == "quit" || q == "exit" {
			return nil
		}

		msg, _ := language.Describe(cmd.Context(), detector, line)
		fmt.Fprintln(out, msg)

		if err := cmd.Context().Err(); err != nil {
			return nil
		}
	}
}
