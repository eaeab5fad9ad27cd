package api

import (
	"fmt"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"strconv"
)

// Store modes of the todo service
const (
	StoreLocal  = "local"
	StoreRemote = "remote"
)

// Config holds the settings of the todo API service
type Config struct {
	// HTTP settings
	Endpoint      string
	TimeoutSecond int

	// Store binding
	Store          string   // StoreLocal or StoreRemote
	StoreEndpoints []string // store node endpoints, only used with StoreRemote
	StoreShard     uint64
	StoreRetries   int
	Serializer     string

	// Logging configuration
	LogLevel string
}

// Validate checks the settings that can not be checked by the flag parser
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	switch c.Store {
	case StoreLocal:
	case StoreRemote:
		if len(c.StoreEndpoints) == 0 {
			return fmt.Errorf("store %q requires at least one store endpoint", StoreRemote)
		}
	default:
		return fmt.Errorf("invalid store %q, must be one of %s, %s", c.Store, StoreLocal, StoreRemote)
	}
	return nil
}

// String renders the configuration for the startup log
func (c *Config) String() string {
	var p common.ConfigPrinter

	p.Section("Todo API")
	p.Field("Endpoint", c.Endpoint)
	p.Field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	p.Section("Logging")
	p.Field("Log Level", c.LogLevel)

	p.Section("Store")
	p.Field("Mode", c.Store)
	if c.Store == StoreRemote {
		p.Field("Shard", strconv.FormatUint(c.StoreShard, 10))
		p.Field("Retries", strconv.Itoa(c.StoreRetries))
		p.Field("Serializer", c.Serializer)
		for i, endpoint := range c.StoreEndpoints {
			p.Field(fmt.Sprintf("Endpoint %d", i), endpoint)
		}
	}

	return p.String()
}
