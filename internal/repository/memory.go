package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

type memoryRecord struct {
	session   *entity.Session
	expiresAt time.Time
}

type memSession struct {
	mu      sync.RWMutex
	records map[string]memoryRecord
	ttl     time.Duration
	now     func() time.Time
}

// NewMemorySessionRepository keeps sessions in process memory. Stored values
// are copies, so callers may keep mutating what they saved.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return newMemorySessionRepository(ttl, time.Now)
}

func newMemorySessionRepository(ttl time.Duration, now func() time.Time) *memSession {
	return &memSession{
		records: make(map[string]memoryRecord),
		ttl:     ttl,
		now:     now,
	}
}

func (that *memSession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	record := memoryRecord{session: session.Clone()}
	if that.ttl > 0 {
		record.expiresAt = that.now().Add(that.ttl)
	}

	that.mu.Lock()
	that.records[session.ID] = record
	that.mu.Unlock()

	return nil
}

func (that *memSession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	record, ok := that.records[id]
	that.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	if that.isExpired(record) {
		that.mu.Lock()
		defer that.mu.Unlock()

		// a write may have replaced the record after the read lock was dropped
		if current, ok := that.records[id]; ok && !that.isExpired(current) {
			return current.session.Clone(), nil
		}

		delete(that.records, id)

		return nil, apperror.ErrSessionNotFound
	}

	return record.session.Clone(), nil
}

func (that *memSession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	record, ok := that.records[id]
	if !ok || that.isExpired(record) {
		delete(that.records, id)
		return apperror.ErrSessionNotFound
	}

	delete(that.records, id)

	return nil
}

func (that *memSession) isExpired(record memoryRecord) bool {
	return !record.expiresAt.IsZero() && !that.now().Before(record.expiresAt)
}
