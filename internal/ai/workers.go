package ai

// Workers bounds concurrent provider calls. Dialog handlers run on gateway
// event goroutines; generation must happen on a pool slot so a slow provider
// never starves the transport heartbeat.
type Workers struct {
	sem chan struct{}
}

func NewWorkers(size int) *Workers {
	if size < 1 {
		size = 1
	}
	return &Workers{sem: make(chan struct{}, size)}
}

// Generate runs p.Generate on a pool slot, blocking until a slot is free.
func (w *Workers) Generate(p Provider, messages []Message) (string, error) {
	w.sem <- struct{}{}
	defer func() { <-w.sem }()
	return p.Generate(messages)
}

// Wrap returns a Provider whose Generate always goes through the pool.
func (w *Workers) Wrap(p Provider) Provider {
	return pooledProvider{p: p, w: w}
}

type pooledProvider struct {
	p Provider
	w *Workers
}

func (pp pooledProvider) Generate(messages []Message) (string, error) {
	return pp.w.Generate(pp.p, messages)
}
