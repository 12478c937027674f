package sshpool

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/ssh"
)

var errNotConnected = errors.New("sshpool: session not connected")

// ErrMaxPerHost is returned when a host already holds MaxPerHost
// connections and ReuseConnections found none free.
var ErrMaxPerHost = errors.New("sshpool: max connections per host exceeded")

// ErrMaxTotal is returned when the pool already holds MaxTotal connections.
var ErrMaxTotal = errors.New("sshpool: max total connections exceeded")

// sharedEntry is one pooled connection: the session plus checkout/age
// bookkeeping. Lock order is always mutex (pool.mu) -> entry fields
// (atomic/RWMutex on session) -> never the reverse, so cleanup and
// checkout never deadlock against each other (spec.md §4.8 lock-ordering
// note, grounded on the Rust source's SharedSession).
type sharedEntry struct {
	sess     *session
	inUse    atomic.Bool
	created  time.Time
	lastUsed atomic.Int64 // unix nanos
	cfg      Config
}

func newSharedEntry(sess *session, cfg Config) *sharedEntry {
	e := &sharedEntry{sess: sess, created: time.Now(), cfg: cfg}
	e.markUsed()
	return e
}

func (e *sharedEntry) markUsed() { e.lastUsed.Store(time.Now().UnixNano()) }

func (e *sharedEntry) acquire() bool { return e.inUse.CompareAndSwap(false, true) }

func (e *sharedEntry) release() {
	e.inUse.Store(false)
	e.markUsed()
}

func (e *sharedEntry) age() time.Duration { return time.Since(e.created) }

func (e *sharedEntry) idleFor() time.Duration {
	return time.Since(time.Unix(0, e.lastUsed.Load()))
}

// Pool caches and reuses SSH connections keyed by user@host:port
// (spec.md §4.8 "ConnectionPool"), grounded on
// original_source/.../backend/ssh/pool.rs's HashMap<String, Vec<Entry>>
// plus per-entry atomic in-use flag.
type Pool struct {
	cfg PoolConfig
	mu  sync.Mutex
	// conns maps a host key to every pooled entry for that host.
	conns map[string][]*sharedEntry
}

// NewPool creates a pool with cfg.
func NewPool(cfg PoolConfig) *Pool {
	return &Pool{cfg: cfg, conns: make(map[string][]*sharedEntry)}
}

// NewDefaultPool creates a pool using DefaultPoolConfig.
func NewDefaultPool() *Pool { return NewPool(DefaultPoolConfig()) }

// Get returns a connection for cfg, reusing a pooled one when possible.
func (p *Pool) Get(cfg Config) (*Conn, error) {
	key := cfg.key()

	if p.cfg.ReuseConnections {
		if entry := p.tryAcquireExisting(key); entry != nil {
			if p.cfg.ValidateOnCheckout && !entry.sess.isConnected() {
				entry.release()
			} else {
				return newConn(p, key, entry), nil
			}
		}
	}

	p.mu.Lock()
	total := 0
	for _, entries := range p.conns {
		total += len(entries)
	}
	if p.cfg.MaxTotal > 0 && total >= p.cfg.MaxTotal {
		p.mu.Unlock()
		return nil, ErrMaxTotal
	}
	if p.cfg.MaxPerHost > 0 && len(p.conns[key]) >= p.cfg.MaxPerHost {
		p.mu.Unlock()
		return nil, ErrMaxPerHost
	}
	p.mu.Unlock()

	sess := newSession(cfg)
	if err := sess.connect(); err != nil {
		return nil, err
	}

	entry := newSharedEntry(sess, cfg)
	entry.acquire()

	p.mu.Lock()
	p.conns[key] = append(p.conns[key], entry)
	p.mu.Unlock()

	return newConn(p, key, entry), nil
}

func (p *Pool) tryAcquireExisting(key string) *sharedEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entry := range p.conns[key] {
		if p.cfg.MaxConnectionAge > 0 && entry.age() > p.cfg.MaxConnectionAge {
			continue
		}
		if entry.acquire() {
			return entry
		}
	}
	return nil
}

// Cleanup removes idle, stale, or disconnected entries. Entries currently
// checked out are never removed.
func (p *Pool) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, entries := range p.conns {
		kept := entries[:0]
		for _, entry := range entries {
			if entry.inUse.Load() {
				kept = append(kept, entry)
				continue
			}
			if !entry.sess.isConnected() {
				continue
			}
			if p.cfg.MaxConnectionAge > 0 && entry.age() > p.cfg.MaxConnectionAge {
				continue
			}
			if p.cfg.IdleTimeout > 0 && entry.idleFor() > p.cfg.IdleTimeout {
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) == 0 {
			delete(p.conns, key)
		} else {
			p.conns[key] = kept
		}
	}
}

// PoolStats summarizes the pool's current population.
type PoolStats struct {
	Total     int
	Active    int
	Idle      int
	Connected int
	Hosts     int
}

// IsEmpty reports whether the pool holds no connections.
func (s PoolStats) IsEmpty() bool { return s.Total == 0 }

// Utilization reports the active/total ratio as a percentage.
func (s PoolStats) Utilization() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Active) / float64(s.Total) * 100
}

// Stats reports the pool's current population.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	var st PoolStats
	st.Hosts = len(p.conns)
	for _, entries := range p.conns {
		for _, entry := range entries {
			st.Total++
			if entry.inUse.Load() {
				st.Active++
			} else {
				st.Idle++
			}
			if entry.sess.isConnected() {
				st.Connected++
			}
		}
	}
	return st
}

// CloseAll disconnects every pooled session and empties the pool.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, entries := range p.conns {
		for _, entry := range entries {
			entry.sess.disconnect()
		}
	}
	p.conns = make(map[string][]*sharedEntry)
}

// Conn is a connection checked out from the pool. Release must be called
// exactly once to return it for reuse — the explicit analogue of the
// distilled source's Drop-triggered release, since Go has no destructors.
type Conn struct {
	pool     *Pool
	key      string
	entry    *sharedEntry
	released atomic.Bool
}

func newConn(pool *Pool, key string, entry *sharedEntry) *Conn {
	entry.markUsed()
	return &Conn{pool: pool, key: key, entry: entry}
}

// IsConnected reports whether the underlying session is still connected.
func (c *Conn) IsConnected() bool { return c.entry.sess.isConnected() }

// Age reports how long ago this connection was established.
func (c *Conn) Age() time.Duration { return c.entry.age() }

// Session exposes the underlying *ssh.Client for opening channels/sessions.
func (c *Conn) Session() *ssh.Client { return c.entry.sess.Client() }

// Release returns the connection to the pool for reuse. Safe to call more
// than once; only the first call has an effect.
func (c *Conn) Release() {
	if c.released.CompareAndSwap(false, true) {
		c.entry.release()
	}
}
