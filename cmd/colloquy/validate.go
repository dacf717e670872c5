package main

import (
	"fmt"

	"github.com/aretw0/colloquy/pkg/adapters/project"
	"github.com/aretw0/colloquy/pkg/dialogue"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a dialogue project for consistency",
	Long: `Reports duplicate names, dangling choices, payloads that do not match their
node kind, operators unsupported by a variable's type and unknown variables.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := project.LoadFile(args[0])
		if err != nil {
			return err
		}
		problems := dialogue.Validate(p.Container, p.Variables)
		out := cmd.OutOrStdout()
		if len(problems) == 0 {
			fmt.Fprintf(out, "%s is valid: %d nodes, %d variables ✅\n", p.Container.FileName, p.Container.Len(), len(p.Variables.ListNames()))
			return nil
		}
		for _, problem := range problems {
			fmt.Fprintf(out, "  - %v\n", problem)
		}
		return fmt.Errorf("validation failed: %d problems", len(problems))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
