// internal/pkg/async/pool.go
package async

import (
	"context"
	"sync"
)

// Task is a named unit of work executed by the pool.
type Task struct {
	Name    string
	Execute func() (interface{}, error)
}

// Result carries the outcome of a single task, keyed by its name.
type Result struct {
	Name string
	Data interface{}
	Err  error
}

type Pool struct {
	workerCount int
	tasks       chan Task
	results     chan Result
}

func NewPool(workerCount int) *Pool {
	return &Pool{
		workerCount: workerCount,
		tasks:       make(chan Task),
		results:     make(chan Result),
	}
}

func (p *Pool) worker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			data, err := task.Execute()
			// Execute stops receiving once the context expires; the
			// send must not outlive it or the worker leaks.
			select {
			case p.results <- Result{
				Name: task.Name,
				Data: data,
				Err:  err,
			}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Execute runs all tasks across the pool's workers and returns results keyed
// by task name. If the context expires before every task finishes, the map
// holds only the results collected so far; callers must treat missing
// entries as failures.
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	var wg sync.WaitGroup
	results := make(map[string]Result, len(tasks))

	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go p.worker(ctx, &wg)
	}

	go func() {
		for _, task := range tasks {
			select {
			case p.tasks <- task:
			case <-ctx.Done():
				return
			}
		}
		close(p.tasks)
	}()

	for i := 0; i < len(tasks); i++ {
		select {
		case result := <-p.results:
			results[result.Name] = result
		case <-ctx.Done():
			return results
		}
	}

	wg.Wait()
	close(p.results)

	return results
}
