package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskboard/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskboard",
		Short: "Taskboard API Server",
		Long:  `Taskboard is a team task tracking backend with workflow states, priorities, projects, tags and a field-level audit log.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewSweepCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
