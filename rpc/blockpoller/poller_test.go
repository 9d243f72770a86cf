package blockpoller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/web3pipe/web3pipe/rpc/jsonrpc"
)

// stubFetcher hands out increasing block heights.
type stubFetcher struct {
	mu     sync.Mutex
	height uint64
	calls  int
	err    error
}

func (f *stubFetcher) Send(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.height++
	return jsonrpc.NewResult(req, hexutil.EncodeUint64(f.height))
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestLatestBlockForcesFetchAndUpdatesCache(t *testing.T) {
	f := &stubFetcher{}
	p := New(f, time.Hour)

	require.Empty(t, p.CurrentBlock())

	height, err := p.LatestBlock(context.Background())
	require.NoError(t, err)
	require.Equal(t, "0x1", height)
	require.Equal(t, "0x1", p.CurrentBlock())
	require.Equal(t, 1, f.callCount())
}

func TestPollerUpdatesCacheInBackground(t *testing.T) {
	f := &stubFetcher{}
	p := New(f, 10*time.Millisecond)

	require.NoError(t, p.Start())
	defer p.Stop()

	require.Eventually(t, func() bool {
		return p.CurrentBlock() != ""
	}, time.Second, 5*time.Millisecond)
}

func TestStartTwiceFails(t *testing.T) {
	p := New(&stubFetcher{}, time.Hour)
	require.NoError(t, p.Start())
	require.Error(t, p.Start())
	p.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	p := New(&stubFetcher{}, time.Hour)
	p.Stop() // never started

	require.NoError(t, p.Start())
	p.Stop()
	p.Stop()
}

func TestStopConcurrent(t *testing.T) {
	p := New(&stubFetcher{}, time.Hour)
	require.NoError(t, p.Start())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Stop()
		}()
	}
	wg.Wait()
}

func TestFetchErrorLeavesCacheUntouched(t *testing.T) {
	f := &stubFetcher{err: errors.New("upstream down")}
	p := New(f, time.Hour)

	_, err := p.LatestBlock(context.Background())
	require.Error(t, err)
	require.Empty(t, p.CurrentBlock())
}

func TestInvalidHeightRejected(t *testing.T) {
	f := &badFetcher{}
	p := New(f, time.Hour)

	_, err := p.LatestBlock(context.Background())
	require.Error(t, err)
	require.Empty(t, p.CurrentBlock())
}

type badFetcher struct{}

func (f *badFetcher) Send(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, error) {
	return jsonrpc.NewResult(req, "not-a-hex-quantity")
}
