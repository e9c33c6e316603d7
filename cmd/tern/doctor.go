package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tern/internal/conc"
	"tern/internal/config"
	"tern/internal/rt"
	"tern/internal/trace"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run runtime substrate self-checks",
	Long:  `Exercises the value model, worker pool, channels and atomics and reports whether the substrate behaves as specified on this host.`,
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().String("config", "", "path to tern.toml (default: ./tern.toml if present)")
	doctorCmd.Flags().String("trace-dump", "", "write a msgpack trace snapshot to this file")
}

type check struct {
	name string
	fn   func(cfg config.Config) error
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := doctorConfig(cmd)
	if err != nil {
		return err
	}

	ring := trace.NewRingTracerSized(cfg.Trace.RingSize, trace.LevelDetail)

	checks := []check{
		{"refcount balance", checkRefcounts},
		{"pool round-trip", func(cfg config.Config) error { return checkPool(cfg, ring) }},
		{"channel semantics", checkChannel},
		{"atomic contention", checkAtomic},
	}

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	npr := message.NewPrinter(language.English)

	g, _ := errgroup.WithContext(context.Background())
	results := make([]error, len(checks))
	for i, c := range checks {
		g.Go(func() error {
			results[i] = c.fn(cfg)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // check outcomes live in results

	failed := 0
	for i, c := range checks {
		if results[i] != nil {
			failed++
			fmt.Printf("%s %s: %v\n", bad("FAIL"), c.name, results[i])
			continue
		}
		fmt.Printf("%s %s\n", ok("ok"), c.name)
	}

	npr.Printf("values allocated: %d, freed: %d, live: %d\n",
		rt.AllocCount(), rt.FreeCount(), rt.LiveCount())

	if path, _ := cmd.Flags().GetString("trace-dump"); path != "" {
		if err := dumpTrace(ring, path); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

func doctorConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(config.DefaultFileName); err == nil {
		return config.Load(config.DefaultFileName)
	}
	return config.Default(), nil
}

func dumpTrace(ring *trace.RingTracer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // best-effort close after explicit dump
	return ring.Dump(f)
}

// checkRefcounts verifies that N shares followed by N releases free a value
// graph exactly once.
func checkRefcounts(config.Config) error {
	arr := rt.NewArray()
	for i := 0; i < 100; i++ {
		arr.Arr.Push(rt.NewInt(int64(i)))
	}
	elem := arr.Arr.Get(0)

	const shares = 50
	for i := 0; i < shares; i++ {
		rt.Incref(arr)
	}
	if got := arr.Refcount(); got != shares+1 {
		return fmt.Errorf("after %d shares refcount is %d", shares, got)
	}
	for i := 0; i < shares; i++ {
		rt.Decref(arr)
	}
	if got := arr.Refcount(); got != 1 {
		return fmt.Errorf("after releases refcount is %d", got)
	}
	rt.Decref(arr)
	if arr.Refcount() != -1 {
		return fmt.Errorf("graph not freed at zero")
	}
	if elem.Refcount() != 1 {
		return fmt.Errorf("container did not release its share of element")
	}
	rt.Decref(elem)
	return nil
}

// checkPool submits a batch of square-computing closures and awaits each.
func checkPool(cfg config.Config, tr trace.Tracer) error {
	pool := conc.New(cfg.Runtime.Workers)
	pool.SetTracer(tr)
	defer pool.Shutdown()

	square := rt.NewClosure(func(u *rt.Unwinder, c *rt.Closure, args []*rt.Value) *rt.Value {
		n := rt.ToInt(args[0])
		return rt.NewInt(n * n)
	}, 1)

	const tasks = 128
	futures := make([]*conc.Future, tasks)
	for i := 0; i < tasks; i++ {
		futures[i] = pool.Submit(square, rt.NewInt(int64(i)))
	}
	for i, f := range futures {
		v, err := f.Await()
		if err != nil {
			return fmt.Errorf("task %d: %w", i, err)
		}
		got := rt.ToInt(v)
		rt.Decref(v)
		f.Dispose()
		if want := int64(i) * int64(i); got != want {
			return fmt.Errorf("task %d: got %d, want %d", i, got, want)
		}
	}
	return nil
}

// checkChannel verifies bounded blocking and close-then-drain semantics.
func checkChannel(config.Config) error {
	ch := conc.NewChannel(1)
	if err := ch.Send(rt.NewInt(1)); err != nil {
		return err
	}
	// On ErrFull the caller keeps ownership of the rejected value.
	rejected := rt.NewInt(2)
	if err := ch.TrySend(rejected); err != conc.ErrFull {
		rt.Decref(rejected)
		return fmt.Errorf("expected ErrFull on full channel, got %v", err)
	}
	rt.Decref(rejected)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		v, err := ch.Recv()
		if err == nil {
			rt.Decref(v)
		}
	}()
	// Blocks until the receiver above drains the first item.
	if err := ch.Send(rt.NewInt(3)); err != nil {
		return err
	}
	wg.Wait()

	ch.Close()
	v, err := ch.Recv()
	if err != nil {
		return fmt.Errorf("buffered item lost at close: %w", err)
	}
	rt.Decref(v)
	if _, err := ch.Recv(); err != conc.ErrClosed {
		return fmt.Errorf("expected ErrClosed after drain, got %v", err)
	}
	return nil
}

// checkAtomic hammers one counter from many goroutines.
func checkAtomic(config.Config) error {
	a := conc.NewAtomic(0)
	const goroutines = 32
	const perG = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				a.Inc()
			}
		}()
	}
	wg.Wait()
	if got := a.Load(); got != goroutines*perG {
		return fmt.Errorf("lost updates: got %d, want %d", got, goroutines*perG)
	}
	return nil
}
