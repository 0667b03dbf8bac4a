package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"advisor/pkg/logx"
)

// Store holds sessions keyed by id with a sliding TTL. Updates for one
// id are serialized on a per-entry mutex; turns for different ids
// proceed independently. An expired record behaves as absent: the next
// access fabricates a fresh default session under the same id.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	ttl             time.Duration
	defaultLanguage string
	log             *logx.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

type entry struct {
	mu        sync.Mutex
	sess      *Session
	expiresAt time.Time
}

// NewStore creates a store and starts its eviction janitor. Call Stop
// to shut the janitor down.
func NewStore(ttl, cleanupInterval time.Duration, defaultLanguage string, log *logx.Logger) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 5 * time.Minute
	}

	s := &Store{
		entries:         make(map[string]*entry),
		ttl:             ttl,
		defaultLanguage: defaultLanguage,
		log:             log,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
	go s.janitor(cleanupInterval)
	return s
}

// Stop terminates the eviction janitor.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}

// GetOrCreate returns a snapshot of the session for id, creating a
// default one when the id is unknown or expired.
func (s *Store) GetOrCreate(id string) *Session {
	return s.Update(id, func(*Session) {})
}

// Update applies fn to the current session record and commits the
// result as one atomic step. fn always sees the latest committed state;
// two overlapping turns for the same id cannot interleave their
// read and write halves. The returned session is a post-commit snapshot.
func (s *Store) Update(id string, fn func(*Session)) *Session {
	for {
		e := s.getEntry(id)
		e.mu.Lock()

		// The janitor may have evicted this entry between lookup and
		// lock. Committing to an orphan would lose the update, so
		// re-resolve from the map.
		s.mu.RLock()
		current := s.entries[id]
		s.mu.RUnlock()
		if current != e {
			e.mu.Unlock()
			continue
		}

		now := time.Now()
		if now.After(e.expiresAt) {
			// Expired mid-flight: behave as absent, then apply.
			s.log.Debug("session %s expired, recreating before update", id)
			e.sess = newDefault(id, s.defaultLanguage, now)
		}

		fn(e.sess)
		e.sess.LastActivity = now
		e.expiresAt = now.Add(s.ttl)

		snapshot := e.sess.Clone()
		e.mu.Unlock()
		return snapshot
	}
}

// MergeContext shallow-merges a patch into the session's context.
// Existing facts absent from the patch are preserved.
func (s *Store) MergeContext(id string, patch Patch) Context {
	sess := s.Update(id, func(sess *Session) {
		sess.Context.Apply(patch)
	})
	return sess.Context
}

// AppendHistory appends a turn record and stamps it.
func (s *Store) AppendHistory(id string, turn Turn) {
	s.Update(id, func(sess *Session) {
		if turn.ID == "" {
			turn.ID = uuid.NewString()
		}
		if turn.Timestamp.IsZero() {
			turn.Timestamp = time.Now()
		}
		sess.History = append(sess.History, turn)
	})
}

// Len returns the number of live (unexpired) sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	n := 0
	for _, e := range s.entries {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (s *Store) getEntry(id string) *entry {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok = s.entries[id]; ok {
		return e
	}

	now := time.Now()
	e = &entry{
		sess:      newDefault(id, s.defaultLanguage, now),
		expiresAt: now.Add(s.ttl),
	}
	s.entries[id] = e
	s.log.Debug("created session %s", id)
	return e
}

func (s *Store) janitor(interval time.Duration) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *Store) evictExpired() {
	now := time.Now()
	evicted := 0

	s.mu.Lock()
	for id, e := range s.entries {
		// Skip entries currently mid-update; their commit refreshes
		// the expiry anyway.
		if !e.mu.TryLock() {
			continue
		}
		if now.After(e.expiresAt) {
			delete(s.entries, id)
			evicted++
		}
		e.mu.Unlock()
	}
	s.mu.Unlock()

	if evicted > 0 {
		s.log.Info("evicted %d expired sessions", evicted)
	}
}
