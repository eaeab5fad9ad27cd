package common

import (
	"strings"
	"testing"
)

func TestParseShardType(t *testing.T) {
	for _, in := range []string{"lstore", "dstore"} {
		if _, err := ParseShardType(in); err != nil {
			t.Errorf("ParseShardType(%q) returned error: %v", in, err)
		}
	}
	if _, err := ParseShardType("lockmgr"); err == nil {
		t.Errorf("Expected error for unknown shard type")
	}
}

func TestServerConfigString(t *testing.T) {
	local := ServerConfig{
		Shards:        []ServerShard{{ShardID: 100, Type: ShardTypeLocalIStore}},
		Endpoint:      "0.0.0.0:8080",
		TimeoutSecond: 5,
		LogLevel:      "info",
	}
	if local.HasRemoteShard() {
		t.Errorf("Local config must not report remote shards")
	}
	if s := local.String(); strings.Contains(s, "RAFT") {
		t.Errorf("Local config should not print RAFT parameters:\n%s", s)
	}

	remote := local
	remote.Shards = []ServerShard{{ShardID: 100, Type: ShardTypeRemoteIStore}}
	remote.ReplicaID = 1
	remote.ClusterMembers = map[uint64]string{1: "localhost:63001"}
	if !remote.HasRemoteShard() {
		t.Errorf("Remote config must report remote shards")
	}
	s := remote.String()
	if !strings.Contains(s, "RAFT Address") || !strings.Contains(s, "localhost:63001") {
		t.Errorf("Remote config should print node identity:\n%s", s)
	}
}

func TestToDragonboatConfig(t *testing.T) {
	c := ServerConfig{
		ReplicaID:       2,
		SnapshotEntries: 1000,
		RTTMillisecond:  100,
		DataDir:         "/tmp/dtodo",
		ClusterMembers:  map[uint64]string{2: "node2:63001"},
	}
	rc := c.ToDragonboatConfig(100)
	if rc.ShardID != 100 || rc.ReplicaID != 2 || rc.SnapshotEntries != 1000 {
		t.Errorf("Unexpected raft config: %+v", rc)
	}
	nh := c.ToNodeHostConfig()
	if nh.RaftAddress != "node2:63001" || nh.RTTMillisecond != 100 {
		t.Errorf("Unexpected node host config: %+v", nh)
	}
}

func TestClientConfigString(t *testing.T) {
	c := ClientConfig{
		Endpoints:     []string{"http://node-1:8080", "http://node-2:8080"},
		TimeoutSecond: 10,
		RetryCount:    3,
	}
	s := c.String()
	for _, want := range []string{"RPC CLIENT", "10 sec", "http://node-1:8080", "Endpoint 1"} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %q in:\n%s", want, s)
		}
	}
}

func TestConfigPrinter(t *testing.T) {
	var p ConfigPrinter
	p.Section("store")
	p.Field("Mode", "local")

	want := "\nSTORE\n  Mode                  : local\n"
	if got := p.String(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
