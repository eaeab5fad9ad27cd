package serve

import (
	"context"
	"github.com/ValentinKolb/dTodo/api"
	cmdUtil "github.com/ValentinKolb/dTodo/cmd/util"
	"github.com/ValentinKolb/dTodo/lib/db"
	"github.com/ValentinKolb/dTodo/lib/db/engines/maple"
	"github.com/ValentinKolb/dTodo/lib/logging"
	"github.com/ValentinKolb/dTodo/lib/store"
	"github.com/ValentinKolb/dTodo/lib/store/lstore"
	"github.com/ValentinKolb/dTodo/lib/todo"
	"github.com/ValentinKolb/dTodo/rpc/client"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"github.com/ValentinKolb/dTodo/rpc/transport/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
)

var (
	apiConfig = &api.Config{}
	ServeCmd  = &cobra.Command{
		Use:   "serve",
		Short: "Start the todo API",
		Long: `Start the todo HTTP API. Todos are kept in an in-process store or in a shard of a store node (see dtodo store serve).
The configuration can be set via command line flags or environment variables. The format of the environment variables is DTODO_<flag> (e.g. DTODO_STORE_ENDPOINTS=http://node-1:8080)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	key := "endpoint"
	ServeCmd.Flags().String(key, "0.0.0.0:8787", cmdUtil.WrapString("The address on which the API will listen"))

	key = "timeout"
	ServeCmd.Flags().Int(key, 10, cmdUtil.WrapString("Read and write timeout of the API in seconds, also used for store requests"))

	key = "log-level"
	ServeCmd.Flags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "store"
	ServeCmd.Flags().String(key, api.StoreLocal, cmdUtil.WrapString("Where todos are stored: 'local' keeps them in memory, 'remote' uses a store node"))

	key = "store-endpoints"
	ServeCmd.Flags().String(key, "http://localhost:8080", cmdUtil.WrapString("(remote store) Comma-separated list of store node endpoints, requests are balanced round robin"))

	key = "store-shard"
	ServeCmd.Flags().Uint64(key, 100, cmdUtil.WrapString("(remote store) ID of the shard holding the todos"))

	key = "store-retries"
	ServeCmd.Flags().Int(key, 0, cmdUtil.WrapString("(remote store) How many times a failed store request is retried on the next endpoint. 0 surfaces failures immediately"))
}

// processConfig reads the flags and environment variables into the API configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	apiConfig.Endpoint = viper.GetString("endpoint")
	apiConfig.TimeoutSecond = viper.GetInt("timeout")
	apiConfig.LogLevel = viper.GetString("log-level")
	apiConfig.Store = viper.GetString("store")
	apiConfig.StoreEndpoints = cmdUtil.SplitList(viper.GetString("store-endpoints"))
	apiConfig.StoreShard = viper.GetUint64("store-shard")
	apiConfig.StoreRetries = viper.GetInt("store-retries")
	apiConfig.Serializer = viper.GetString("serializer")

	if _, err := logging.ParseLevel(apiConfig.LogLevel); err != nil {
		return err
	}
	return apiConfig.Validate()
}

func run(_ *cobra.Command, _ []string) error {
	if err := logging.InitLoggers(apiConfig.LogLevel); err != nil {
		return err
	}

	s, err := newStore(apiConfig)
	if err != nil {
		return err
	}

	api.Logger.Infof("%s", apiConfig.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.NewServer(*apiConfig, todo.NewService(s)).Serve(ctx)
}

// newStore creates the store backing the todo service
func newStore(c *api.Config) (store.IStore, error) {
	if c.Store == api.StoreLocal {
		return lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) }), nil
	}

	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return nil, err
	}

	return client.NewRPCStore(
		c.StoreShard,
		common.ClientConfig{
			Endpoints:     c.StoreEndpoints,
			TimeoutSecond: c.TimeoutSecond,
			RetryCount:    c.StoreRetries,
		},
		http.NewHttpClientTransport(),
		s,
	)
}
