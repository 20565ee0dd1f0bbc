package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/previewdocs/pkg/config"
	"github.com/walteh/previewdocs/pkg/git"
	"github.com/walteh/previewdocs/pkg/log"
	"github.com/walteh/previewdocs/pkg/publish"
	"github.com/walteh/previewdocs/pkg/status"
)

var (
	// Flags
	configFile string
	debug      bool
	remoteName string
	noOpen     bool
)

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "previewdocs <file> [<file>...]",
		Short: "Push a preview of local markdown files to a sandbox ref and open it",
		Long: `previewdocs builds a throwaway commit containing only the given files,
force-pushes it to refs/sandbox/<user>/preview_docs on the first configured
googlesource remote, and prints (and opens) the URL where Gitiles renders it.

The commit has no parent and is staged through a scratch index, so your
real history, working tree and staging area are never touched.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, args)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", ".previewdocs.yaml", "config file path")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().StringVar(&remoteName, "remote", "", "use this git remote instead of auto-detection")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "print the preview URL without opening a browser")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func runPreview(cmd *cobra.Command, args []string) error {
	// Set up logger
	logLevel := zerolog.InfoLevel
	if debug {
		logLevel = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).Level(logLevel).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	// Load config
	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	// Expand glob arguments
	files, err := expandArgs(args)
	if err != nil {
		return err
	}

	consoleLogger := log.New(os.Stdout, logLevel)
	consoleLogger.Header(fmt.Sprintf("previewing %d file(s)", len(files)))

	pub, err := publish.New(publish.Options{
		Config:     cfg,
		Git:        git.New(""),
		Status:     status.NewLogger(ctx),
		RemoteName: remoteName,
		NoOpen:     noOpen,
	})
	if err != nil {
		return errors.Errorf("creating publisher: %w", err)
	}

	url, err := pub.Publish(ctx, files)
	if err != nil {
		return errors.Errorf("publishing preview: %w", err)
	}

	consoleLogger.URL(url)
	return nil
}

// loadConfig loads the config file. The default path is allowed to be
// missing; a path the user asked for explicitly is not.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	return config.Load(ctx, configFile)
}

// expandArgs expands glob patterns in the positional arguments, keeping
// argument order. Literal paths pass through untouched so the published
// URL reflects exactly what the caller typed.
func expandArgs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, errors.Errorf("expanding pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, errors.Errorf("pattern %q matched no files", arg)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// TODO(dr.methodical): 🧪 Add tests for loadConfig flag handling
