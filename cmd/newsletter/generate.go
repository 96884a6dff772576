package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deusflow/newsletter/internal/logger"
	"github.com/deusflow/newsletter/internal/newsletter"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	var (
		outDir string
		format string
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "generate PROFILE",
		Short: "Generate one newsletter and save it to a file",
		Example: `  newsletter generate "Jane Doe(Software Engineer, 30, India)"
  newsletter generate "Sam Lee(Ornithology, 29, Germany)" --format html --out ./out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			doc, err := rt.pipeline.Run(cmd.Context(), args[0])
			if err != nil {
				return exitFor(err)
			}

			data, ext, _, err := render(doc, format)
			if err != nil {
				return err
			}
			if stdout {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if outDir == "" {
				outDir = rt.cfg.OutputDir
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			path := filepath.Join(outDir, newsletter.Filename(doc, ext))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write newsletter: %w", err)
			}

			logger.Info("newsletter saved", "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Newsletter saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default OUTPUT_DIR)")
	cmd.Flags().StringVar(&format, "format", formatMarkdown, "output format: md or html")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "write the newsletter to stdout instead of a file")
	return cmd
}
