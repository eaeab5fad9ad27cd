package todo

import (
	"github.com/ValentinKolb/dTodo/api/client"
	"github.com/ValentinKolb/dTodo/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"time"
)

var (
	apiClient *client.Client

	// TodoCommands represents the todo command group
	TodoCommands = &cobra.Command{
		Use:               "todo",
		Short:             "Manage todos through the todo API",
		PersistentPreRunE: setupClient,
	}
)

func init() {
	TodoCommands.PersistentFlags().String("api", "http://localhost:8787", util.WrapString("Base URL of the todo API"))
	TodoCommands.PersistentFlags().Int("timeout", 10, util.WrapString("The timeout in seconds of a single request"))

	TodoCommands.AddCommand(listCmd)
	TodoCommands.AddCommand(getCmd)
	TodoCommands.AddCommand(createCmd)
	TodoCommands.AddCommand(updateCmd)
	TodoCommands.AddCommand(deleteCmd)
	TodoCommands.AddCommand(seedCmd)
	TodoCommands.AddCommand(randomCmd)
	TodoCommands.AddCommand(perfCmd)
}

// setupClient creates the API client used by all subcommands
func setupClient(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	apiClient, err = client.New(
		viper.GetString("api"),
		client.WithTimeout(time.Duration(viper.GetInt("timeout"))*time.Second),
	)
	return err
}
