package store

import (
	"github.com/spf13/cobra"
)

// StoreCommands represents the store node command group
var StoreCommands = &cobra.Command{
	Use:   "store",
	Short: "Run and inspect key-value store nodes for the todo API",
}

func init() {
	StoreCommands.AddCommand(serveCmd)
	StoreCommands.AddCommand(infoCmd)
	StoreCommands.AddCommand(hasCmd)
}
