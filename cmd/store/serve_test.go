package store

import (
	"github.com/ValentinKolb/dTodo/lib/db/util"
	"github.com/ValentinKolb/dTodo/rpc/common"
	"testing"
)

func TestParseShards(t *testing.T) {
	shards, err := parseShards("100=lstore, 200=dstore")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(shards) != 2 {
		t.Fatalf("Expected 2 shards, got %d", len(shards))
	}
	if shards[0].ShardID != 100 || shards[0].Type != common.ShardTypeLocalIStore {
		t.Errorf("Unexpected first shard %+v", shards[0])
	}
	if shards[1].ShardID != 200 || shards[1].Type != common.ShardTypeRemoteIStore {
		t.Errorf("Unexpected second shard %+v", shards[1])
	}

	for _, invalid := range []string{"", "100", "abc=lstore", "100=lockmgr(lstore)", "100=lstore=x"} {
		if _, err := parseShards(invalid); err == nil {
			t.Errorf("Expected error for %q", invalid)
		}
	}
}

func TestParseClusterMembers(t *testing.T) {
	members, err := parseClusterMembers("node-1=localhost:63001,node-2=localhost:63002")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := members[uint64(util.HashString("node-1", 0))]; got != "localhost:63001" {
		t.Errorf("Expected address of node-1, got %q", got)
	}
	if len(members) != 2 {
		t.Errorf("Expected 2 members, got %d", len(members))
	}

	if _, err := parseClusterMembers("node-1"); err == nil {
		t.Errorf("Expected error for member without address")
	}
}
