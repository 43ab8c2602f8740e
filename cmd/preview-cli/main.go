// Command preview-cli renders notification step previews from request files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-preview/pkg/prompt"
)

type app struct {
	debug  bool
	logger *zap.Logger
	out    io.Writer
	driver prompt.Driver
}

func newRootCmd(out io.Writer) *cobra.Command {
	return newRootCmdWithDriver(out, nil)
}

// newRootCmdWithDriver builds the command tree; a nil driver prompts on the
// terminal.
func newRootCmdWithDriver(out io.Writer, driver prompt.Driver) *cobra.Command {
	a := &app{logger: zap.NewNop(), out: out, driver: driver}

	root := &cobra.Command{
		Use:   "preview-cli",
		Short: "Render notification step previews",
		Long: `preview-cli renders the preview of a notification step from a request
file holding the step type, its control values and an optional example
payload. Missing payload variables are synthesized and reported as issues.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if a.debug {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	root.AddCommand(newGenerateCmd(a), newExtractCmd(a))
	return root
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
