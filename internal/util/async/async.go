package async

import (
	"context"
	"time"
)

// Task represents an asynchronous operation with a name and function.
type Task struct {
	Name string
	Func func(context.Context) error
}

// Result is the outcome of one Task.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Run executes every task concurrently, waits for all of them and returns
// their results in task order.
func Run(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	done := make(chan struct{}, len(tasks))

	for i, task := range tasks {
		go func() {
			start := time.Now()
			err := task.Func(ctx)
			results[i] = Result{Name: task.Name, Err: err, Duration: time.Since(start)}
			done <- struct{}{}
		}()
	}
	for range tasks {
		<-done
	}
	return results
}
