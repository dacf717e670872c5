package main

import (
	"fmt"
	"os"

	"github.com/aretw0/colloquy/pkg/adapters/luavm"
	"github.com/aretw0/colloquy/pkg/adapters/project"
	"github.com/aretw0/colloquy/pkg/story"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file> <script.lua>",
	Short: "Declare a story script's globals as project variables",
	Long: `Loads the script, infers a type for each of its scalar globals and registers
the ones the project does not declare yet. The project file is rewritten
unless --dry-run is given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, scriptPath := args[0], args[1]
		p, err := project.LoadFile(path)
		if err != nil {
			return err
		}
		source, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("failed to read script: %w", err)
		}

		bridge := story.NewBridge(luavm.NewFactory(luavm.WithLogger(logger)), story.WithLogger(logger))
		imported, err := bridge.ImportInto(p.Variables, string(source))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(imported) == 0 {
			fmt.Fprintln(out, "Nothing to import.")
			return nil
		}
		for _, name := range imported {
			v, _ := p.Variables.Variable(name)
			fmt.Fprintf(out, "  + %s (%s) = %s\n", name, v.Type, v.Default)
		}

		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			return nil
		}
		if err := project.SaveFile(path, p); err != nil {
			return err
		}
		logger.Info("Project updated", "path", path, "imported", len(imported))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("dry-run", false, "List the variables without rewriting the project")
}
