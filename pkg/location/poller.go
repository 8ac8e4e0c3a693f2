package location

import (
	"context"
	"sync"
	"time"

	"github.com/benmeehan/safezone-agent/internal/constants"
	"github.com/benmeehan/safezone-agent/internal/models"
	"github.com/benmeehan/safezone-agent/pkg/geo"
)

// FetchFunc produces a single location fix.
type FetchFunc func(ctx context.Context) (models.LocationSample, error)

// PollingSubscription turns a one-shot FetchFunc into a Subscription by polling it on a ticker.
type PollingSubscription struct {
	opts     SubscribeOptions
	fetch    FetchFunc
	onUpdate func(models.LocationSample)
	onError  func(error)

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
	last    models.LocationSample
	hasLast bool
}

// NewPollingSubscription starts polling fetch immediately and returns the running subscription.
func NewPollingSubscription(opts SubscribeOptions, fetch FetchFunc, onUpdate func(models.LocationSample), onError func(error)) *PollingSubscription {
	if opts.MinInterval <= 0 {
		opts.MinInterval = constants.DefaultMinInterval
	}
	if opts.MinDisplacementMeters < 0 {
		opts.MinDisplacementMeters = 0
	}

	p := &PollingSubscription{
		opts:     opts,
		fetch:    fetch,
		onUpdate: onUpdate,
		onError:  onError,
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run()
	}()

	return p
}

// Remove stops the polling loop and waits for it to exit.
func (p *PollingSubscription) Remove() {
	p.once.Do(func() {
		p.cancel()
		p.wg.Wait()
	})
}

func (p *PollingSubscription) run() {
	ticker := time.NewTicker(p.opts.MinInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.poll()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *PollingSubscription) poll() {
	ctx, cancel := context.WithTimeout(p.ctx, p.opts.MinInterval)
	defer cancel()

	sample, err := p.fetch(ctx)
	if p.ctx.Err() != nil {
		return
	}
	if err != nil {
		if p.onError != nil {
			p.onError(err)
		}
		return
	}

	if p.hasLast && geo.Distance(p.last.Coordinate(), sample.Coordinate()) < p.opts.MinDisplacementMeters {
		return
	}
	p.last = sample
	p.hasLast = true

	p.onUpdate(sample)
}
