package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dumpcheck/internal/catalog"
	"dumpcheck/internal/convert"
	"dumpcheck/internal/resultcache"
	"dumpcheck/internal/verify"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var (
		allowCueMismatches bool
		extraCueSource     string
		showToolOutput     bool
		noCache            bool
	)

	cmd := &cobra.Command{
		Use:   "verify CATALOG DUMP...",
		Short: "Verify dump files or folders of dumps against a Datfile catalog",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := ctx.ensureSetup()
			if err != nil {
				return err
			}

			cat, err := catalog.Load(args[0])
			if err != nil {
				// A broken catalog makes every verification meaningless.
				return err
			}
			logger.Info("catalog loaded", "system", cat.System, "games", len(cat.Games))

			var store *resultcache.Store
			if !noCache {
				cfg, _, _ := ctx.ensureSetup()
				store, err = resultcache.Open(cfg.CachePath())
				if err != nil {
					return err
				}
				defer store.Close()
			}

			converter, err := ctx.converter()
			if err != nil {
				return err
			}
			dolphin, err := ctx.dolphinTool()
			if err != nil {
				return err
			}

			verifier := verify.New(cat, converter, dolphin, store, logger, verify.Options{
				ShowToolOutput:     showToolOutput,
				AllowCueMismatches: allowCueMismatches,
				ExtraCueSource:     extraCueSource,
			})

			result, err := verifier.VerifyAll(cmd.Context(), args[1:])
			if err != nil {
				return err
			}

			printVerifySummary(result)
			for _, itemErr := range result.Errors {
				fmt.Fprintln(os.Stderr, itemErr)
				var convErr *convert.Error
				if errors.As(itemErr, &convErr) && convErr.Output != "" && showToolOutput {
					fmt.Fprint(os.Stderr, convErr.Output)
				}
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("verification failed for %d of %d dumps",
					len(result.Errors), len(result.Errors)+len(result.Verified))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&allowCueMismatches, "allow-cue-mismatches", false,
		"Treat cue sheets that do not match the catalog as warnings instead of errors")
	cmd.Flags().StringVar(&extraCueSource, "extra-cue-source", "",
		"File, directory, or zip of original cue sheets used to check reconstructed ones")
	cmd.Flags().BoolVar(&showToolOutput, "show-tool-output", false,
		"Echo external tool output")
	cmd.Flags().BoolVar(&noCache, "no-cache", false,
		"Skip the verification result cache")

	return cmd
}

func printVerifySummary(result *verify.BatchResult) {
	if len(result.Verified) == 0 {
		fmt.Println("No dumps verified.")
		return
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		rows := make([][]string, 0, len(result.Verified))
		for _, game := range result.Verified {
			rows = append(rows, []string{game.Name})
		}
		fmt.Println(renderTable([]string{"Verified Game"}, rows))
	} else {
		for _, game := range result.Verified {
			fmt.Printf("verified: %s\n", game.Name)
		}
	}
	fmt.Printf("%d dump(s) verified, %d error(s)\n", len(result.Verified), len(result.Errors))
}
