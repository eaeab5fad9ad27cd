package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dTodo/cmd/serve"
	"github.com/ValentinKolb/dTodo/cmd/store"
	"github.com/ValentinKolb/dTodo/cmd/todo"
	"github.com/ValentinKolb/dTodo/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dtodo",
		Short: "todo HTTP API over a key-value store",
		Long: fmt.Sprintf(`dTodo (v%s)

A small todo HTTP API backed by an in-memory or RAFT replicated key-value store,
with a command line client.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dTodo",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dTodo v%s\n", Version)
		},
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(store.StoreCommands)
	RootCmd.AddCommand(todo.TodoCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer used between the API and store nodes (json, gob)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
