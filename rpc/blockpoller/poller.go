// Package blockpoller keeps a cached view of the upstream chain's latest
// block height, refreshed on a fixed interval for the lifetime of the
// pipeline.
package blockpoller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"

	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
)

// Fetcher issues upstream JSON-RPC calls. Satisfied by
// *transport.FetchTransport, so the poller inherits the transport's retry
// policy.
type Fetcher interface {
	Send(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error)
}

// Poller polls eth_blockNumber in the background and caches the latest
// value. Single writer, many readers; readers never block on a poll.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	log      log.Logger

	mu      sync.RWMutex
	current string // hex-encoded height, empty until the first poll

	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a poller. Start must be called before the cache is
// refreshed periodically.
func New(fetcher Fetcher, interval time.Duration) *Poller {
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		log:      log.New("package", "web3pipe/rpc/blockpoller"),
	}
}

// Start launches the background polling task.
func (p *Poller) Start() error {
	if p.quit != nil {
		return errors.New("block poller is already started")
	}

	p.quit = make(chan struct{})
	p.wg.Add(1)

	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), p.interval)
				if _, err := p.fetch(ctx); err != nil {
					p.log.Error("error while polling latest block number", "error", err)
				}
				cancel()
			case <-p.quit:
				return
			}
		}
	}()

	return nil
}

// Stop terminates the polling task and waits for it to exit. Safe to call
// more than once, including concurrently.
func (p *Poller) Stop() {
	if p.quit == nil {
		return
	}

	p.stopOnce.Do(func() { close(p.quit) })
	p.wg.Wait()
}

// CurrentBlock returns the cached latest block height without touching
// the upstream. Empty until the first successful poll.
func (p *Poller) CurrentBlock() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// LatestBlock forces a fresh fetch, updates the cache and returns the
// result.
func (p *Poller) LatestBlock(ctx context.Context) (string, error) {
	return p.fetch(ctx)
}

func (p *Poller) fetch(ctx context.Context) (string, error) {
	resp, err := p.fetcher.Send(ctx, jsonrpc.NewRequest("eth_blockNumber"))
	if err != nil {
		return "", err
	}

	var height string
	if err := resp.UnmarshalResult(&height); err != nil {
		return "", err
	}
	if _, err := hexutil.DecodeBig(height); err != nil {
		return "", err
	}

	p.mu.Lock()
	p.current = height
	p.mu.Unlock()

	return height, nil
}
