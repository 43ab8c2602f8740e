package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-preview/pkg/preview"
	"github.com/goliatone/go-preview/pkg/prompt"
	"github.com/goliatone/go-preview/pkg/request"
)

type generateOptions struct {
	requestPath string
	outputPath  string
	interactive bool
	themeFile   string
	themeName   string
	variant     string
}

func newGenerateCmd(a *app) *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the preview for a request file",
		Long: `Generate reads a JSON or YAML request holding stepType, controlValues,
payloadValues and an optional controlSchema, and prints the preview
response as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.requestPath, "request", "", "Path to the request file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.outputPath, "output", "", "Write the response to this file instead of stdout")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Prompt for missing payload variables and regenerate")
	cmd.Flags().StringVar(&opts.themeFile, "theme-file", "", "YAML theme manifest applied to email output")
	cmd.Flags().StringVar(&opts.themeName, "theme", "", "Theme name to select from the manifest")
	cmd.Flags().StringVar(&opts.variant, "variant", "", "Theme variant to select")
	_ = cmd.MarkFlagRequired("request")
	return cmd
}

func (a *app) generate(ctx context.Context, opts *generateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := request.LoadFile(opts.requestPath)
	if err != nil {
		return err
	}

	options := []preview.Option{preview.WithLogger(a.logger)}
	if opts.themeFile != "" {
		selector, err := loadThemeFile(opts.themeFile)
		if err != nil {
			return err
		}
		options = append(options, preview.WithThemeSelector(selector, opts.themeName, opts.variant))
	}
	service := preview.New(options...)

	resp, err := service.Generate(ctx, req)
	if err != nil {
		return err
	}

	if opts.interactive {
		driver := a.driver
		if driver == nil {
			driver = prompt.NewSurveyDriver()
		}
		payload, answered, err := prompt.Collect(ctx, driver, resp.Issues, req.PayloadValues)
		switch {
		case errors.Is(err, prompt.ErrAborted):
			a.logger.Info("prompt aborted, keeping generated preview")
		case err != nil:
			return err
		case answered > 0:
			a.logger.Debug("regenerating preview with collected payload", zap.Int("answered", answered))
			req.PayloadValues = payload
			if resp, err = service.Generate(ctx, req); err != nil {
				return err
			}
		}
	}

	return a.writeResponse(opts.outputPath, resp)
}

func (a *app) writeResponse(path string, resp preview.Response) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	data = append(data, '\n')

	if strings.TrimSpace(path) == "" {
		_, err = a.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	a.logger.Info("preview written", zap.String("path", path))
	return nil
}
