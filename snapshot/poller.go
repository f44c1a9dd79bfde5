package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/scprotocol/scctl/wallet"
)

const (
	DefaultProtocolInterval = 10 * time.Second
	DefaultAccountInterval  = 5 * time.Second
)

// Source builds snapshots. *Aggregator is the real one.
type Source interface {
	Protocol(ctx context.Context) *ProtocolSnapshot
	Account(ctx context.Context, addr common.Address) *AccountSnapshot
}

// Update is sent to subscribers every time a snapshot is replaced.
// Account is nil while no wallet is connected.
type Update struct {
	Protocol *ProtocolSnapshot
	Account  *AccountSnapshot
}

// Poller keeps the latest snapshots fresh. Refreshes that overlap are not
// cancelled, whichever finishes last is kept.
type Poller struct {
	source           Source
	wallet           wallet.Wallet
	protocolInterval time.Duration
	accountInterval  time.Duration

	mu       sync.RWMutex
	protocol *ProtocolSnapshot
	account  *AccountSnapshot
	subs     map[int]func(Update)
	nextSub  int

	refresh  chan struct{}
	inflight sync.WaitGroup
}

func NewPoller(source Source, w wallet.Wallet, protocolInterval, accountInterval time.Duration) *Poller {
	if protocolInterval <= 0 {
		protocolInterval = DefaultProtocolInterval
	}
	if accountInterval <= 0 {
		accountInterval = DefaultAccountInterval
	}
	return &Poller{
		source:           source,
		wallet:           w,
		protocolInterval: protocolInterval,
		accountInterval:  accountInterval,
		protocol:         DefaultProtocol(),
		subs:             map[int]func(Update){},
		refresh:          make(chan struct{}, 1),
	}
}

// Latest returns the current snapshots.
func (p *Poller) Latest() Update {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Update{Protocol: p.protocol, Account: p.account}
}

// Subscribe registers fn to be called after every replacement. The
// returned func unregisters it.
func (p *Poller) Subscribe(fn func(Update)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Poller) notify() {
	p.mu.RLock()
	u := Update{Protocol: p.protocol, Account: p.account}
	subs := make([]func(Update), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.RUnlock()
	for _, fn := range subs {
		fn(u)
	}
}

func (p *Poller) refreshProtocol(ctx context.Context) {
	ps := p.source.Protocol(ctx)
	if ctx.Err() != nil {
		return
	}
	p.mu.Lock()
	p.protocol = ps
	p.mu.Unlock()
	p.notify()
}

func (p *Poller) refreshAccount(ctx context.Context) {
	addr, ok := p.wallet.Address()
	if !ok {
		return
	}
	as := p.source.Account(ctx, addr)
	if ctx.Err() != nil {
		return
	}
	p.mu.Lock()
	p.account = as
	p.mu.Unlock()
	p.notify()
}

func (p *Poller) spawn(ctx context.Context, fn func(context.Context)) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		fn(ctx)
	}()
}

// Fetch refreshes both snapshots and waits for them.
func (p *Poller) Fetch(ctx context.Context) Update {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.refreshProtocol(ctx)
	}()
	go func() {
		defer wg.Done()
		p.refreshAccount(ctx)
	}()
	wg.Wait()
	return p.Latest()
}

// Refresh asks a running poller to refresh both snapshots now. It never
// blocks, requests made while one is queued are merged.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Run polls until ctx is done. Account polling only happens while the
// wallet has an address.
func (p *Poller) Run(ctx context.Context) {
	protocolTicker := time.NewTicker(p.protocolInterval)
	defer protocolTicker.Stop()
	accountTicker := time.NewTicker(p.accountInterval)
	defer accountTicker.Stop()

	p.spawn(ctx, p.refreshProtocol)
	p.spawn(ctx, p.refreshAccount)
	for {
		select {
		case <-ctx.Done():
			p.inflight.Wait()
			return
		case <-protocolTicker.C:
			p.spawn(ctx, p.refreshProtocol)
		case <-accountTicker.C:
			p.spawn(ctx, p.refreshAccount)
		case <-p.refresh:
			p.spawn(ctx, p.refreshProtocol)
			p.spawn(ctx, p.refreshAccount)
		}
	}
}
