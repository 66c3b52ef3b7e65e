// Package verification implements the transient state behind the two-phase
// contact verification flow: a keyed, TTL-expiring store of pending
// submissions, one entry per (normalized) email address.
//
// The store is the single shared mutable resource of the flow. Keys are
// distributed over a fixed number of shards so that unrelated emails never
// contend on one lock, while all operations on the same key are serialized
// by its shard mutex. Expiry is lazy: an expired entry behaves as absent on
// every read regardless of whether the sweeper has removed it yet. An
// opportunistic sweep bounds memory the same way the HTTP rate limiter
// evicts idle buckets.
//
// Promotion to a durable record uses Claim/Release rather than a bare
// get-then-delete: Claim atomically validates the code and marks the entry
// taken, so two racing verification attempts for the same email resolve to
// exactly one winner. The winner deletes the entry only after the durable
// write succeeds; on failure it releases the claim and the entry stays
// retryable until its TTL elapses.
package verification

import (
	"hash/fnv"
	"strings"
	"sync"
	"time"
)

// Errors reported by Claim. All of them surface to API clients as the same
// generic verification failure; the distinction exists for internal logging.
var (
	// ErrNoPending means no live entry exists for the email: never issued,
	// already consumed, or expired.
	ErrNoPending = errStr("no pending verification")

	// ErrCodeMismatch means an entry exists but the presented code is wrong.
	// The entry is left untouched so the caller may retry within the TTL.
	ErrCodeMismatch = errStr("verification code mismatch")

	// ErrClaimed means another verification attempt holds the entry right now.
	ErrClaimed = errStr("pending verification already claimed")
)

type errStr string

func (e errStr) Error() string { return string(e) }

// Entry is one pending contact submission awaiting email verification.
type Entry struct {
	Code      string    // 6-digit numeric code, as issued
	Username  string    // carried through unmodified
	Comment   string    // carried through unmodified
	ExpiresAt time.Time // issuance time + TTL
}

const shardCount = 16

// sweepEvery is the number of store operations between opportunistic sweeps
// of a shard's expired entries.
const sweepEvery = 1000

type pending struct {
	Entry
	claimed bool
}

type shard struct {
	mu     sync.Mutex
	m      map[string]*pending
	sweepN uint64
}

// Store holds at most one pending verification per email with TTL expiry.
// The zero value is not usable; construct with NewStore. Safe for concurrent
// use.
type Store struct {
	ttl    time.Duration
	now    func() time.Time
	shards [shardCount]*shard
}

// Option customizes a Store.
type Option func(*Store)

// WithClock injects the time source. Tests use this to simulate expiry
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore constructs a Store whose entries live for ttl after each Put.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		ttl: ttl,
		now: time.Now,
	}
	for i := range s.shards {
		s.shards[i] = &shard{m: make(map[string]*pending)}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TTL returns the configured entry lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// NormalizeEmail canonicalizes an email address for use as a store key:
// surrounding whitespace is dropped and the address is lowercased, so
// "Ann@Example.com " and "ann@example.com" share one pending slot.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Put unconditionally upserts the pending entry for email, replacing any
// prior entry (and its code, and any in-flight claim) and starting a fresh
// expiry window. The email must already be normalized via NormalizeEmail.
func (s *Store) Put(email, code, username, comment string) Entry {
	e := Entry{
		Code:      code,
		Username:  username,
		Comment:   comment,
		ExpiresAt: s.now().Add(s.ttl),
	}
	sh := s.shard(email)
	sh.mu.Lock()
	sh.maybeSweep(s.now())
	sh.m[email] = &pending{Entry: e}
	sh.mu.Unlock()
	return e
}

// Get returns the live entry for email. An expired entry behaves as absent
// even if it has not been swept yet.
func (s *Store) Get(email string) (Entry, bool) {
	now := s.now()
	sh := s.shard(email)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.maybeSweep(now)
	p, ok := sh.m[email]
	if !ok || !now.Before(p.ExpiresAt) {
		return Entry{}, false
	}
	return p.Entry, true
}

// Delete removes the entry for email. Missing keys are a no-op.
func (s *Store) Delete(email string) {
	sh := s.shard(email)
	sh.mu.Lock()
	delete(sh.m, email)
	sh.mu.Unlock()
}

// Claim atomically validates and takes the pending entry for email.
// Under the shard lock it checks, in order: presence and non-expiry
// (ErrNoPending), an existing claim (ErrClaimed), and code equality
// (ErrCodeMismatch). On success the entry is marked claimed and returned;
// the caller must follow up with Delete after committing the durable record,
// or Release if the commit fails.
//
// A mismatched code never mutates the entry, so the submitter keeps
// retrying until the TTL elapses.
func (s *Store) Claim(email, code string) (Entry, error) {
	now := s.now()
	sh := s.shard(email)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	p, ok := sh.m[email]
	if !ok || !now.Before(p.ExpiresAt) {
		return Entry{}, ErrNoPending
	}
	if p.claimed {
		return Entry{}, ErrClaimed
	}
	if p.Code != code {
		return Entry{}, ErrCodeMismatch
	}
	p.claimed = true
	return p.Entry, nil
}

// Release undoes a successful Claim, making the entry claimable again.
// It is a no-op when the entry has since been deleted or replaced.
func (s *Store) Release(email string) {
	sh := s.shard(email)
	sh.mu.Lock()
	if p, ok := sh.m[email]; ok {
		p.claimed = false
	}
	sh.mu.Unlock()
}

// Len reports the number of stored entries, including expired ones that have
// not been swept. Intended for tests and diagnostics.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.m)
		sh.mu.Unlock()
	}
	return n
}

func (s *Store) shard(email string) *shard {
	h := fnv.New32a()
	h.Write([]byte(email))
	return s.shards[h.Sum32()%shardCount]
}

// maybeSweep drops expired entries after a threshold of operations.
// Correctness never depends on it; reads already treat expired entries as
// absent. Caller must hold sh.mu.
func (sh *shard) maybeSweep(now time.Time) {
	sh.sweepN++
	if sh.sweepN < sweepEvery {
		return
	}
	sh.sweepN = 0
	for k, p := range sh.m {
		if !now.Before(p.ExpiresAt) {
			delete(sh.m, k)
		}
	}
}
