package testing

import (
	"bytes"
	"fmt"
	"github.com/ValentinKolb/dTodo/lib/db"
	"sort"
	"sync"
	"testing"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("Keys", func(t *testing.T) {
			testKeys(t, factory())
		})

		t.Run("StaleWrites", func(t *testing.T) {
			testStaleWrites(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("EdgeCases", func(t *testing.T) {
			testEdgeCases(t, factory())
		})

		t.Run("ConcurrentUsage", func(t *testing.T) {
			testConcurrentUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet)

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	database.Set(testKey, testValue1, 1)

	result, exists := database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	database.Set(testKey, testValue2, 2)

	result, exists = database.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	_, exists = database.Get("nonexistent-key")
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	retrievedValue, _ := database.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _ := database.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	input := []byte("input-value")
	database.Set("copy-key", input, 3)
	input[0] = 'X'
	stored, _ := database.Get("copy-key")
	if !bytes.Equal(stored, []byte("input-value")) {
		t.Errorf("Set should store a copy of the value, got %s", stored)
	}

	if database.WriteIdx() != 3 {
		t.Errorf("Expected write index 3, got %d", database.WriteIdx())
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	database.Set("delete-key", []byte("value"), 1)
	database.Delete("delete-key", 2)

	if _, exists := database.Get("delete-key"); exists {
		t.Errorf("Key should not exist after Delete")
	}

	// deleting a missing key is a no-op
	database.Delete("missing-key", 3)
	if _, exists := database.Get("missing-key"); exists {
		t.Errorf("Delete of a missing key should not create it")
	}

	database.Set("delete-key", []byte("again"), 4)
	result, exists := database.Get("delete-key")
	if !exists || !bytes.Equal(result, []byte("again")) {
		t.Errorf("Key should be writable again after Delete, got %s (exists=%v)", result, exists)
	}
}

func testHas(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureHas|db.FeatureDelete)

	if database.Has("has-key") {
		t.Errorf("Has should return false for a missing key")
	}

	database.Set("has-key", []byte("value"), 1)
	if !database.Has("has-key") {
		t.Errorf("Has should return true after Set")
	}

	database.Delete("has-key", 2)
	if database.Has("has-key") {
		t.Errorf("Has should return false after Delete")
	}
}

func testKeys(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureDelete|db.FeatureKeys)

	if keys := database.Keys(); len(keys) != 0 {
		t.Errorf("Expected no keys in an empty database, got %v", keys)
	}

	expected := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("keys-%03d", i)
		database.Set(key, []byte("v"), uint64(i+1))
		expected = append(expected, key)
	}

	// overwriting must not duplicate keys
	database.Set("keys-000", []byte("v2"), 200)

	// deleted keys must not be listed
	database.Delete("keys-099", 201)
	expected = expected[:99]

	keys := database.Keys()
	sort.Strings(keys)

	if len(keys) != len(expected) {
		t.Fatalf("Expected %d keys, got %d", len(expected), len(keys))
	}
	for i := range expected {
		if keys[i] != expected[i] {
			t.Errorf("Expected key %s at position %d, got %s", expected[i], i, keys[i])
		}
	}
}

func testStaleWrites(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete)

	database.Set("stale-key", []byte("new"), 10)
	database.Set("stale-key", []byte("old"), 5)

	result, _ := database.Get("stale-key")
	if !bytes.Equal(result, []byte("new")) {
		t.Errorf("Stale Set should be ignored, got %s", result)
	}

	database.Delete("stale-key", 7)
	if _, exists := database.Get("stale-key"); !exists {
		t.Errorf("Stale Delete should be ignored")
	}

	database.SetWriteIdx(3)
	if database.WriteIdx() != 10 {
		t.Errorf("Write index should never decrease, got %d", database.WriteIdx())
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	database2 := factory()

	// close the databases after the test
	defer database.Close()
	defer database2.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureKeys|db.FeatureSave|db.FeatureLoad)

	numEntries := 1000
	originalKeys := make([]string, numEntries)
	originalValues := make([][]byte, numEntries)

	for i := 0; i < numEntries; i++ {
		key := fmt.Sprintf("save-load-test-key-%d", i)
		value := []byte(fmt.Sprintf("save-load-test-value-%d", i))
		originalKeys[i] = key
		originalValues[i] = value

		database.Set(key, value, uint64(i+1))
	}

	// this entry must be replaced by the loaded snapshot
	database2.Set("only-in-target", []byte("value"), 1)

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}

	if err := database2.Load(&buf); err != nil {
		t.Fatalf("Unexpected error during Load: %v", err)
	}

	for i := 0; i < numEntries; i++ {
		key := originalKeys[i]
		expectedValue := originalValues[i]

		actualValue, exists := database2.Get(key)
		if !exists {
			t.Errorf("Key %s not found after Load", key)
			continue
		}

		if !bytes.Equal(actualValue, expectedValue) {
			t.Errorf("Value mismatch for key %s: expected %s, got %s", key, expectedValue, actualValue)
		}
	}

	if _, exists := database2.Get("only-in-target"); exists {
		t.Errorf("Load should replace the existing state")
	}

	if got := len(database2.Keys()); got != numEntries {
		t.Errorf("Expected %d keys after Load, got %d", numEntries, got)
	}

	if database2.WriteIdx() != uint64(numEntries) {
		t.Errorf("Expected write index %d after Load, got %d", numEntries, database2.WriteIdx())
	}
}

func testEdgeCases(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureKeys)

	cases := []struct {
		name  string
		key   string
		value []byte
	}{
		{"empty key", "", []byte("empty-key-value")},
		{"empty value", "empty-value", []byte{}},
		{"nil value", "nil-value", nil},
		{"unicode key", "todo-✓-😀", []byte("unicode")},
		{"slash key", "todos/1", []byte("slash")},
		{"large value", "large-value", bytes.Repeat([]byte("x"), 1<<20)},
	}

	for i, c := range cases {
		database.Set(c.key, c.value, uint64(i+1))

		result, exists := database.Get(c.key)
		if !exists {
			t.Errorf("%s: key should exist after Set", c.name)
			continue
		}
		if len(result) != len(c.value) || !bytes.Equal(result, c.value) {
			t.Errorf("%s: value mismatch (len %d, expected %d)", c.name, len(result), len(c.value))
		}
	}

	if got := len(database.Keys()); got != len(cases) {
		t.Errorf("Expected %d keys, got %d", len(cases), got)
	}
}

func testConcurrentUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureSet|db.FeatureGet|db.FeatureDelete|db.FeatureKeys)

	numWorkers := 8
	keysPerWorker := 500

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()

			for i := 0; i < keysPerWorker; i++ {
				key := fmt.Sprintf("worker-%d-key-%d", workerId, i)
				idx := uint64(workerId*keysPerWorker + i + 1)

				database.Set(key, []byte(key), idx)
				database.Get(key)
				database.Keys()

				// every worker deletes every second key it wrote
				if i%2 == 1 {
					database.Delete(key, idx)
				}
			}
		}(w)
	}

	wg.Wait()

	keys := database.Keys()
	if len(keys) != numWorkers*keysPerWorker/2 {
		t.Fatalf("Expected %d keys after concurrent usage, got %d", numWorkers*keysPerWorker/2, len(keys))
	}

	for _, key := range keys {
		value, exists := database.Get(key)
		if !exists {
			t.Errorf("Listed key %s does not exist", key)
			continue
		}
		if string(value) != key {
			t.Errorf("Value mismatch for key %s: got %s", key, value)
		}
	}
}
