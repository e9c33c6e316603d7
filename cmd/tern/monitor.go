package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tern/internal/conc"
	"tern/internal/rt"
	"tern/internal/ui"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch a synthetic workload run on the pool",
	Long:  `Drives a synthetic closure workload through the worker pool and renders live scheduling statistics.`,
	RunE:  runMonitor,
}

func init() {
	monitorCmd.Flags().Int("workers", 4, "pool worker count")
	monitorCmd.Flags().Int("tasks", 2000, "number of tasks to submit")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	workers, _ := cmd.Flags().GetInt("workers")
	tasks, _ := cmd.Flags().GetInt("tasks")

	pool := conc.New(workers)
	defer pool.Shutdown()

	busywork := rt.NewClosure(func(u *rt.Unwinder, c *rt.Closure, args []*rt.Value) *rt.Value {
		n := rt.ToInt(args[0])
		acc := int64(0)
		for i := int64(0); i < n%500+100; i++ {
			acc += i * i
		}
		time.Sleep(time.Millisecond)
		return rt.NewInt(acc)
	}, 1)

	done := conc.NewAtomic(0)
	go func() {
		futures := make([]*conc.Future, 0, tasks)
		for i := 0; i < tasks; i++ {
			futures = append(futures, pool.Submit(busywork, rt.NewInt(int64(i))))
		}
		for _, f := range futures {
			v, err := f.Await()
			if err == nil {
				rt.Decref(v)
			}
			f.Dispose()
		}
		done.Store(1)
	}()

	model := ui.NewMonitorModel("tern pool monitor", func() ui.Sample {
		return ui.Sample{
			Stats: pool.Stats(),
			Live:  rt.LiveCount(),
			Done:  done.Load() == 1,
		}
	})
	if _, err := tea.NewProgram(model).Run(); err != nil {
		return err
	}

	npr := message.NewPrinter(language.English)
	s := pool.Stats()
	npr.Printf("completed %d of %d tasks\n", s.Completed, s.Submitted)
	if done.Load() != 1 {
		fmt.Println("workload interrupted before completion")
	}
	return nil
}
