package store

import (
	"encoding/json"
	"fmt"
	cmdUtil "github.com/ValentinKolb/dTodo/cmd/util"
	kvstore "github.com/ValentinKolb/dTodo/lib/store"
	"github.com/ValentinKolb/dTodo/rpc/client"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"github.com/ValentinKolb/dTodo/rpc/transport/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
)

var (
	infoCmd = &cobra.Command{
		Use:     "info",
		Short:   "Print key count, size and engine details of a shard",
		PreRunE: bindFlags,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := connect()
			if err != nil {
				return err
			}
			return printInfo(cmd.OutOrStdout(), s)
		},
	}

	hasCmd = &cobra.Command{
		Use:     "has [key]",
		Short:   "Check whether a key (todo id) exists in a shard",
		Args:    cobra.ExactArgs(1),
		PreRunE: bindFlags,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := connect()
			if err != nil {
				return err
			}
			return printHas(cmd.OutOrStdout(), s, args[0])
		},
	}
)

func init() {
	for _, c := range []*cobra.Command{infoCmd, hasCmd} {
		c.Flags().String("endpoints", "http://localhost:8080", cmdUtil.WrapString("Comma-separated list of store node endpoints"))
		c.Flags().Uint64("shard", 100, cmdUtil.WrapString("ID of the shard to inspect"))
		c.Flags().Int("timeout", 5, cmdUtil.WrapString("Request timeout in seconds"))
	}
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return cmdUtil.BindCommandFlags(cmd)
}

// connect opens a single attempt RPC store for the shard selected by the flags
func connect() (kvstore.IStore, error) {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return nil, err
	}
	return client.NewRPCStore(
		viper.GetUint64("shard"),
		common.ClientConfig{
			Endpoints:     cmdUtil.SplitList(viper.GetString("endpoints")),
			TimeoutSecond: viper.GetInt("timeout"),
		},
		http.NewHttpClientTransport(),
		s,
	)
}

func printInfo(w io.Writer, s kvstore.IStore) error {
	info, err := s.GetDBInfo()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func printHas(w io.Writer, s kvstore.IStore, key string) error {
	ok, err := s.Has(key)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, ok)
	return err
}
