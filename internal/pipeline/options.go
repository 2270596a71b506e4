package pipeline

import "runtime"

// Options controls per-item execution behavior.
type Options struct {
	// Parallel enables fanning per-item transforms out across workers.
	// Stage boundaries remain strictly sequential either way.
	Parallel bool
	// Workers bounds the worker count when Parallel is set. Zero or negative
	// falls back to GOMAXPROCS.
	Workers int
}

func (o Options) workerCount() int {
	if !o.Parallel {
		return 1
	}
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}
