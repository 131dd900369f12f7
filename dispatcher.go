package wq

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/eijebong/wq/internal"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// dispatcher owns the single pub/sub connection for one queue instance and
// fans its two channels out to local waiters (spec §5: "the sole
// process-local shared structure is the push-message dispatcher, which
// uses a broadcast channel"): a broadcast wake signal for blocked claimers,
// and per-job resolved events for wait-for-job callers. Waiters register
// before checking current state (subscribe-before-check, spec §4.3/§4.8) so
// a message published between the check and the subscribe can never be
// missed; the wake side uses a single close-and-replace broadcast channel,
// the resolved side a map of per-job-id one-shot channels.
type dispatcher struct {
	lcBase
	client      *redis.Client
	wakeChannel string
	resolvedKey string
	log         logr.Logger

	mu      sync.Mutex
	waiters map[JobId][]chan string
	wakeGen chan struct{}

	pubsub *redis.PubSub
	done   internal.DoneChan
}

func newDispatcher(client *redis.Client, k keys, log logr.Logger) *dispatcher {
	return &dispatcher{
		client:      client,
		wakeChannel: k.wake,
		resolvedKey: k.resolved,
		log:         log.WithName("dispatcher"),
		waiters:     make(map[JobId][]chan string),
		wakeGen:     make(chan struct{}),
	}
}

// Start subscribes to both channels and begins fanning out messages. It
// blocks until the subscription is confirmed, so that callers never miss
// a message published immediately after Start returns.
func (d *dispatcher) Start(ctx context.Context) error {
	if err := d.tryStart(); err != nil {
		return err
	}
	d.pubsub = d.client.Subscribe(ctx, d.wakeChannel, d.resolvedKey)
	if _, err := d.pubsub.Receive(ctx); err != nil {
		d.state.Store(stopped)
		return transportErr(err)
	}
	d.done = make(internal.DoneChan)
	go d.run(ctx)
	return nil
}

func (d *dispatcher) run(ctx context.Context) {
	defer close(d.done)
	ch := d.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			d.handle(msg)
		}
	}
}

func (d *dispatcher) handle(msg *redis.Message) {
	switch msg.Channel {
	case d.wakeChannel:
		d.broadcastWake()
	case d.resolvedKey:
		d.deliverResolved(msg.Payload)
	}
}

func (d *dispatcher) broadcastWake() {
	d.mu.Lock()
	old := d.wakeGen
	d.wakeGen = make(chan struct{})
	d.mu.Unlock()
	close(old)
}

func (d *dispatcher) deliverResolved(payload string) {
	idStr, status, ok := strings.Cut(payload, ":")
	if !ok {
		d.log.Info("dropping malformed resolved message", "payload", payload)
		return
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		d.log.Info("dropping malformed resolved message", "payload", payload)
		return
	}
	d.mu.Lock()
	chans := d.waiters[id]
	delete(d.waiters, id)
	d.mu.Unlock()
	for _, c := range chans {
		select {
		case c <- status:
		default:
		}
		close(c)
	}
}

// subscribeWake returns the channel closed the next time a wake event
// arrives. Callers MUST call this before their final empty-queue check
// (spec §4.3's subscribe-before-check rule) to avoid a lost wake-up.
func (d *dispatcher) subscribeWake() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.wakeGen
}

// subscribeResolved registers a waiter for id's terminal status. Callers
// MUST call this before checking the stored result (spec §4.8's
// subscribe-before-check rule). The returned cancel func must be called
// once the caller stops waiting, whether or not a message arrived.
func (d *dispatcher) subscribeResolved(id JobId) (ch <-chan string, cancel func()) {
	c := make(chan string, 1)
	d.mu.Lock()
	d.waiters[id] = append(d.waiters[id], c)
	d.mu.Unlock()
	return c, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		chans := d.waiters[id]
		for i, existing := range chans {
			if existing == c {
				d.waiters[id] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(d.waiters[id]) == 0 {
			delete(d.waiters, id)
		}
	}
}

// Stop closes the subscription and waits up to timeout for the dispatch
// goroutine to exit.
func (d *dispatcher) Stop(timeout time.Duration) error {
	return d.tryStop(timeout, func() internal.DoneChan {
		_ = d.pubsub.Close()
		return d.done
	})
}
