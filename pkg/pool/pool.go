// Package pool runs independent per-index work on a fixed set of goroutines.
package pool

import (
	"runtime"
	"sync"
)

// job is one call f(i) of a Run batch.
type job struct {
	i    int
	f    func(int)
	done *sync.WaitGroup
}

func work(jobs <-chan job) {
	for j := range jobs {
		j.f(j.i)
		j.done.Done()
	}
}

// Pool is a fixed set of worker goroutines.
//
// A nil *Pool is valid, and runs all work on the calling goroutine.
type Pool struct {
	jobs    chan job
	workers int
}

// NewPool starts count workers, or one per CPU when count <= 0.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan job), workers: count}
	for i := 0; i < count; i++ {
		go work(p.jobs)
	}
	return p
}

// TearDown stops the workers. The pool must not be used afterwards.
func (p *Pool) TearDown() {
	close(p.jobs)
}

// Workers returns the number of workers, 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Run calls f(i) for every i in [0, count), and returns once all calls have.
//
// Several Run calls may share a pool, but f must not call Run on the same pool.
func (p *Pool) Run(count int, f func(int)) {
	if p == nil {
		for i := 0; i < count; i++ {
			f(i)
		}
		return
	}
	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		p.jobs <- job{i: i, f: f, done: &wg}
	}
	wg.Wait()
}

// Parallelize returns [f(0), f(1), ..., f(count-1)], computed on p.
func Parallelize[T any](p *Pool, count int, f func(int) T) []T {
	results := make([]T, count)
	p.Run(count, func(i int) {
		results[i] = f(i)
	})
	return results
}
