package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/pegzap/zap-engine/internal/domain"
)

type fakeReader struct {
	reads int
	err   error
}

func (f *fakeReader) ReadPool(_ context.Context, addr common.Address, kind domain.PoolKind) (domain.PoolSnapshot, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return stableSnap(addr, 1000), nil
}

func newTestService(reader PoolReader, addrs ...common.Address) *Service {
	svc := &Service{
		reader: reader,
		cache:  NewSnapshotCache(12 * time.Second),
		pools:  make(map[common.Address]domain.PoolKind),
	}
	for _, addr := range addrs {
		svc.pools[addr] = domain.PoolKindStable
		svc.order = append(svc.order, addr)
	}
	return svc
}

func TestSnapshotReadThrough(t *testing.T) {
	addr := common.HexToAddress("0x0a")
	reader := &fakeReader{}
	svc := newTestService(reader, addr)

	snap, err := svc.Snapshot(context.Background(), addr)
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if snap.PoolAddress() != addr {
		t.Errorf("snapshot address %s, want %s", snap.PoolAddress().Hex(), addr.Hex())
	}
	if reader.reads != 1 {
		t.Fatalf("first snapshot should hit the chain once, got %d reads", reader.reads)
	}

	if _, err := svc.Snapshot(context.Background(), addr); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if reader.reads != 1 {
		t.Errorf("second snapshot within TTL should be served from cache, got %d reads", reader.reads)
	}
}

func TestSnapshotUnknownPool(t *testing.T) {
	svc := newTestService(&fakeReader{}, common.HexToAddress("0x0a"))
	_, err := svc.Snapshot(context.Background(), common.HexToAddress("0x0b"))
	if !errors.Is(err, ErrUnknownPool) {
		t.Errorf("expected ErrUnknownPool, got %v", err)
	}
}

func TestSnapshotFetchFailure(t *testing.T) {
	addr := common.HexToAddress("0x0a")
	readErr := errors.New("rpc down")
	reader := &fakeReader{err: readErr}
	svc := newTestService(reader, addr)

	if _, err := svc.Snapshot(context.Background(), addr); !errors.Is(err, readErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}

	// A failed fetch must not poison the cache.
	reader.err = nil
	if _, err := svc.Snapshot(context.Background(), addr); err != nil {
		t.Fatalf("recovery snapshot: %v", err)
	}
	if reader.reads != 2 {
		t.Errorf("expected 2 chain reads, got %d", reader.reads)
	}
}

func TestPoolsListing(t *testing.T) {
	a := common.HexToAddress("0x0a")
	b := common.HexToAddress("0x0b")
	svc := newTestService(&fakeReader{}, a, b)

	infos := svc.Pools()
	if len(infos) != 2 || infos[0].Address != a || infos[1].Address != b {
		t.Errorf("pool listing out of order: %+v", infos)
	}
}
