package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/math2video/internal/instruction"
	"github.com/ivlev/math2video/internal/source"
)

func newInstructionsCommand(ctx *commandContext) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "instructions <prompt>",
		Short: "Resolve a prompt to instructions without rendering",
		Long: `Resolve a prompt through the generator (or the keyword fallback) and print
the instruction list as JSON. With --out the list is saved as a script that
render --script can replay.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.TrimSpace(strings.Join(args, " "))
			if prompt == "" {
				return errors.New("empty prompt")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			runCtx, cancel := signalContext(cmd)
			defer cancel()

			res := source.NewResolverFromConfig(cfg.Generator, logger).ResolveDetailed(runCtx, prompt)

			if outPath != "" {
				if fi, err := os.Stat(outPath); err == nil && fi.IsDir() {
					outPath = instruction.ScriptPath(outPath, time.Now())
				}
				script := &instruction.Script{
					Prompt:       prompt,
					Origin:       string(res.Origin),
					Instructions: res.Instructions,
				}
				if err := instruction.WriteScript(script, outPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[*] Saved %d instructions to %s (%s)\n", len(res.Instructions), outPath, res.Origin)
				return nil
			}

			data, err := instruction.Marshal(res.Instructions)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Save as a script (.yaml, .yml or .json; a directory gets a timestamped name)")
	return cmd
}
