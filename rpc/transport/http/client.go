package http

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"github.com/ValentinKolb/dTodo/rpc/transport"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var errNotConnected = errors.New("http transport: not connected")

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	endpoints []string
	client    *http.Client
	next      atomic.Uint32
	attempts  int
}

func (c *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return errors.New("http transport: no endpoints configured")
	}

	endpoints := make([]string, 0, len(config.Endpoints))
	for _, raw := range config.Endpoints {
		endpoint, err := normalizeEndpoint(raw)
		if err != nil {
			return fmt.Errorf("http transport: invalid endpoint %q: %w", raw, err)
		}
		endpoints = append(endpoints, endpoint)
	}

	timeout := time.Duration(config.TimeoutSecond) * time.Second
	c.client = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     timeout,
		},
	}
	c.endpoints = endpoints
	c.attempts = 1 + max(0, config.RetryCount)
	c.next.Store(0)

	return nil
}

// Send posts req to the next endpoint, a failed attempt moves on to the following one
func (c *httpClientTransport) Send(shardId uint64, req []byte) ([]byte, error) {
	if c.client == nil {
		return nil, errNotConnected
	}

	shard := strconv.FormatUint(shardId, 10)
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		target := c.endpoints[c.next.Add(1)%uint32(len(c.endpoints))] + "/" + shard

		var resp []byte
		if resp, err = c.post(target, req); err == nil {
			return resp, nil
		}
		Logger.Debugf("attempt %d/%d to %s failed: %v", attempt, c.attempts, target, err)
	}
	return nil, fmt.Errorf("failed to send request after %d attempts: %w", c.attempts, err)
}

func (c *httpClientTransport) post(target string, body []byte) ([]byte, error) {
	resp, err := c.client.Post(target, "application/octet-stream", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error: %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *httpClientTransport) Close() error {
	if c.client != nil {
		c.client.CloseIdleConnections()
	}
	c.client = nil
	c.endpoints = nil
	return nil
}

// normalizeEndpoint adds a missing http scheme and strips a trailing slash
func normalizeEndpoint(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(strings.TrimSuffix(raw, "/"))
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errors.New("missing host")
	}
	return u.String(), nil
}
