package render

import "sync"

// Progress is a snapshot of the frame loop. Written restarts from zero
// when the encoder falls back to another candidate.
type Progress struct {
	Stage   string
	Encoder string
	Attempt int
	Written int
	Total   int
}

// Percent returns completion in the range 0..100.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return 100 * float64(p.Written) / float64(p.Total)
}

// reporter forwards progress without ever blocking the frame loop. Updates
// that arrive while the consumer is busy overwrite each other, so the
// consumer always receives the newest snapshot.
type reporter struct {
	out    chan<- Progress
	mu     sync.Mutex
	latest Progress
	notify chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

func newReporter(out chan<- Progress) *reporter {
	r := &reporter{out: out, notify: make(chan struct{}, 1), done: make(chan struct{})}
	if out != nil {
		r.wg.Add(1)
		go r.loop()
	}
	return r
}

func (r *reporter) publish(p Progress) {
	if r.out == nil {
		return
	}
	r.mu.Lock()
	r.latest = p
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *reporter) loop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case <-r.notify:
			r.mu.Lock()
			p := r.latest
			r.mu.Unlock()
			select {
			case r.out <- p:
			case <-r.done:
				return
			}
		}
	}
}

// stop ends forwarding. It never closes the caller's channel.
func (r *reporter) stop() {
	if r.out == nil {
		return
	}
	close(r.done)
	r.wg.Wait()
}
