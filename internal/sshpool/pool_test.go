package sshpool

import (
	"testing"
	"time"
)

func TestPoolStatsAndUtilization(t *testing.T) {
	p := NewPool(DefaultPoolConfig())
	cfg := Config{Host: "example.com", Port: 22, Credentials: PasswordCredentials("u", "p")}

	e1 := newSharedEntry(newSession(cfg), cfg)
	e1.acquire()
	e2 := newSharedEntry(newSession(cfg), cfg)

	p.conns[cfg.key()] = []*sharedEntry{e1, e2}

	stats := p.Stats()
	if stats.Total != 2 || stats.Active != 1 || stats.Idle != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Utilization() != 50 {
		t.Fatalf("utilization = %v, want 50", stats.Utilization())
	}
}

func TestPoolMaxPerHostRejectsNewConnection(t *testing.T) {
	cfg := PoolConfig{MaxPerHost: 1, MaxTotal: 10, ReuseConnections: false}
	p := NewPool(cfg)
	target := Config{Host: "example.com", Port: 22, Credentials: PasswordCredentials("u", "p")}

	entry := newSharedEntry(newSession(target), target)
	entry.acquire()
	p.conns[target.key()] = []*sharedEntry{entry}

	_, err := p.Get(target)
	if err != ErrMaxPerHost {
		t.Fatalf("err = %v, want ErrMaxPerHost", err)
	}
}

func TestPoolCleanupRemovesIdleStaleNotInUse(t *testing.T) {
	p := NewPool(PoolConfig{IdleTimeout: time.Millisecond, ReuseConnections: true})
	cfg := Config{Host: "example.com", Port: 22, Credentials: PasswordCredentials("u", "p")}

	sess := newSession(cfg)
	sess.client = nil // never actually connected: isConnected() is false

	stale := newSharedEntry(sess, cfg)
	p.conns[cfg.key()] = []*sharedEntry{stale}

	p.Cleanup()

	if _, ok := p.conns[cfg.key()]; ok {
		t.Fatal("expected disconnected entry to be cleaned up")
	}
}

func TestPoolCleanupKeepsInUseEntries(t *testing.T) {
	p := NewPool(PoolConfig{})
	cfg := Config{Host: "example.com", Port: 22, Credentials: PasswordCredentials("u", "p")}

	entry := newSharedEntry(newSession(cfg), cfg)
	entry.acquire()
	p.conns[cfg.key()] = []*sharedEntry{entry}

	p.Cleanup()

	if len(p.conns[cfg.key()]) != 1 {
		t.Fatal("expected in-use entry to survive cleanup")
	}
}

func TestConnReleaseIsIdempotent(t *testing.T) {
	p := NewPool(DefaultPoolConfig())
	cfg := Config{Host: "example.com", Port: 22, Credentials: PasswordCredentials("u", "p")}
	entry := newSharedEntry(newSession(cfg), cfg)
	entry.acquire()

	conn := newConn(p, cfg.key(), entry)
	conn.Release()
	conn.Release()

	if entry.inUse.Load() {
		t.Fatal("expected entry released exactly once and now free")
	}
}
