package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/golens/cmd/golens/index"
	"github.com/walteh/golens/cmd/golens/inspect"
	"github.com/walteh/golens/cmd/golens/query"
	"github.com/walteh/golens/pkg/cli"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

// NewRootCommand builds the golens command tree around g.
func NewRootCommand(g *cli.Globals) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "golens",
		Short:         "Inspect Go source the way an editor sees it",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	g.Register(rootCmd)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(inspect.NewTokensCommand(g))
	rootCmd.AddCommand(inspect.NewParseCommand(g))
	rootCmd.AddCommand(inspect.NewDiagnosticsCommand(g))
	rootCmd.AddCommand(query.NewHighlightCommand(g))
	rootCmd.AddCommand(query.NewHoverCommand(g))
	rootCmd.AddCommand(query.NewCompleteCommand(g))
	rootCmd.AddCommand(query.NewDefinitionCommand(g))
	rootCmd.AddCommand(query.NewRefsCommand(g))
	rootCmd.AddCommand(query.NewRenameCommand(g))
	rootCmd.AddCommand(index.NewIndexCommand(g))

	return rootCmd
}

func run() error {
	rootCmd := NewRootCommand(&cli.Globals{})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
