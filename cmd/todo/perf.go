package todo

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dTodo/cmd/util"
	"github.com/ValentinKolb/dTodo/lib/todo"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	perfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Load test the todo API",
		Long:    "Runs create, get, update, list and delete against the todo API from several workers and reports the latency of each operation. All todos created by the test are deleted again.",
		Args:    cobra.NoArgs,
		PreRunE: processPerfConfig,
		RunE:    runPerf,
	}
	perfIDPrefix = "__perf"
	perfOps      = []string{"create", "get", "update", "list", "delete"}
	perfThreads  = 10
	perfRequests = 100
	perfSkip     = make([]string, 0)
)

func init() {
	key := "threads"
	perfCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent workers"))
	key = "requests"
	perfCmd.Flags().Int(key, 100, util.WrapString("Number of todos each worker creates, reads, updates and deletes"))
	key = "skip"
	perfCmd.Flags().String(key, "", util.WrapString("Operations to skip (comma separated - e.g. list,update)"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfThreads = viper.GetInt("threads")
	perfRequests = viper.GetInt("requests")
	perfSkip = util.SplitList(viper.GetString("skip"))

	if perfThreads < 1 || perfRequests < 1 {
		return fmt.Errorf("threads and requests must be at least 1")
	}
	return nil
}

func runPerf(cmd *cobra.Command, _ []string) error {
	fmt.Println(titleStyle.Render("Performance test of " + viper.GetString("api")))
	fmt.Println(mutedStyle.Render(fmt.Sprintf("%d workers, %d todos each", perfThreads, perfRequests)))
	fmt.Println()

	registry := gometrics.NewRegistry()
	var failures atomic.Int64

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(perfThreads)
	for w := 0; w < perfThreads; w++ {
		go func(worker int) {
			defer wg.Done()
			runWorker(ctx, worker, registry, &failures)
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	lines := []string{
		titleStyle.Render(fmt.Sprintf("%-8s %8s %10s %10s %10s %10s", "op", "count", "mean", "p50", "p99", "max")),
	}
	for _, op := range perfOps {
		if shouldSkip(op) {
			lines = append(lines, fmt.Sprintf("%-8s %s", op, mutedStyle.Render("skipped")))
			continue
		}
		lines = append(lines, formatTimer(op, gometrics.GetOrRegisterTimer(op, registry).Snapshot()))
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("took %s, %d failed requests", elapsed.Round(time.Millisecond), failures.Load())))

	fmt.Println(panelStyle.Render(strings.Join(lines, "\n")))
	return nil
}

// runWorker walks its own set of todos through all operations, each op is timed separately
func runWorker(ctx context.Context, worker int, registry gometrics.Registry, failures *atomic.Int64) {
	ids := make([]string, perfRequests)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%d-%d", perfIDPrefix, worker, i)
	}

	timed := func(op string, fn func() error) {
		if shouldSkip(op) {
			return
		}
		begin := time.Now()
		err := fn()
		gometrics.GetOrRegisterTimer(op, registry).UpdateSince(begin)
		if err != nil {
			failures.Add(1)
		}
	}

	completed := true
	for _, id := range ids {
		timed("create", func() error {
			_, err := apiClient.Create(ctx, todo.Draft{ID: id, Title: "perf " + id})
			return err
		})
		timed("get", func() error {
			_, err := apiClient.Get(ctx, id)
			return err
		})
		timed("update", func() error {
			_, err := apiClient.Update(ctx, id, todo.Patch{Completed: &completed})
			return err
		})
	}

	// list is expensive, run it once per ten todos
	for i := 0; i < perfRequests; i += 10 {
		timed("list", func() error {
			_, err := apiClient.List(ctx)
			return err
		})
	}

	for _, id := range ids {
		timed("delete", func() error {
			_, err := apiClient.Delete(ctx, id)
			return err
		})
	}
}

func formatTimer(op string, t gometrics.Timer) string {
	if t.Count() == 0 {
		return fmt.Sprintf("%-8s %8d", op, 0)
	}
	ps := t.Percentiles([]float64{0.5, 0.99})
	return fmt.Sprintf("%-8s %8d %10s %10s %10s %10s",
		op,
		t.Count(),
		time.Duration(t.Mean()).Round(time.Microsecond),
		time.Duration(ps[0]).Round(time.Microsecond),
		time.Duration(ps[1]).Round(time.Microsecond),
		time.Duration(t.Max()).Round(time.Microsecond),
	)
}

func shouldSkip(op string) bool {
	for _, skip := range perfSkip {
		if op == skip {
			return true
		}
	}
	return false
}
