package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dumpcheck/internal/cuesheet"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir      string
		system         string
		showToolOutput bool
		extraCueSource string
	)

	cmd := &cobra.Command{
		Use:   "convert DUMP...",
		Short: "Convert CHD dumps into normalized bin/cue folders",
		Long: "Convert CHD dumps into Redump-style bin/cue dump folders (or plain images " +
			"when no cue sheet is needed). With --system, the cue sheet is normalized to " +
			"that system's catalog conventions; use the catalog header name or the short " +
			"name from Redump site URLs.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := ctx.ensureSetup()
			if err != nil {
				return err
			}
			converter, err := ctx.converter()
			if err != nil {
				return err
			}

			for _, dumpPath := range args {
				normalized, err := converter.ToNormalizedFolder(cmd.Context(), dumpPath, outputDir, system, showToolOutput)
				if err != nil {
					return err
				}
				if !normalized && system != "" {
					logger.Warn("cue sheet was not normalized: no rules known for this system", "system", system)
				}
				if extraCueSource != "" {
					if err := replaceWithReferenceCue(dumpPath, outputDir, extraCueSource, logger.Info); err != nil {
						return err
					}
				}
				fmt.Printf("converted: %s\n", filepath.Base(dumpPath))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output folder")
	cmd.Flags().StringVar(&system, "system", "", "System name the dumps are for")
	cmd.Flags().BoolVar(&showToolOutput, "show-tool-output", false, "Echo external tool output")
	cmd.Flags().StringVar(&extraCueSource, "extra-cue-source", "",
		"File, directory, or zip of original cue sheets; a matching sheet replaces the reconstructed one")

	return cmd
}

// replaceWithReferenceCue swaps the reconstructed cue sheet for the original
// when the reference source has one for this dump. The original is always
// preferable; reconstruction exists because it is usually unavailable.
func replaceWithReferenceCue(dumpPath, outputDir, source string, logInfo func(string, ...any)) error {
	base := filepath.Base(dumpPath)
	cueName := strings.TrimSuffix(base, filepath.Ext(base)) + ".cue"
	cuePath := filepath.Join(outputDir, cueName)

	if _, err := os.Stat(cuePath); err != nil {
		// Collapsed to a plain image; there is no cue sheet to replace.
		return nil
	}

	data, found, err := cuesheet.FindReference(source, cueName)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if err := os.WriteFile(cuePath, data, 0o644); err != nil {
		return fmt.Errorf("write reference cue sheet: %w", err)
	}
	logInfo("replaced reconstructed cue sheet with the reference one", "cue", cueName)
	return nil
}
