package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/seunghochoi2018/soslab/pkg/redis"
)

// writerLockKey 요청 컬렉션을 바꾸는 모든 작업이 공유하는 쓰기 잠금
const writerLockKey = "webhook:lock"

// acquireWriterLock 쓰기 잠금을 ttl 안에 얻는다
func acquireWriterLock(ctx context.Context, l Locker, ttl time.Duration) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, ttl)
	defer cancel()
	unlock, err := l.Lock(lockCtx, writerLockKey, ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire writer lock: %w", err)
	}
	return unlock, nil
}

// Locker 쓰기 잠금
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// Deduper 같은 이벤트의 중복 처리 방지
type Deduper interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

// TokenBlacklist 로그아웃한 토큰 목록
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Coordination 서비스 간 공유되는 잠금/중복 제거/블랙리스트
type Coordination struct {
	Locker    Locker
	Deduper   Deduper
	Blacklist TokenBlacklist
}

// NewCoordination Redis 가 있으면 Redis 를, 없으면 프로세스 내부 구현을 쓴다.
func NewCoordination(rdb *redis.Client) Coordination {
	if rdb != nil {
		return Coordination{Locker: rdb, Deduper: rdb, Blacklist: rdb}
	}
	return Coordination{
		Locker:    NewLocalLocker(),
		Deduper:   NewLocalDeduper(),
		Blacklist: NewLocalBlacklist(),
	}
}

// ── 프로세스 내부 잠금 ──

// LocalLocker 단일 인스턴스용 잠금. 키마다 용량 1 채널을 세마포어로 쓴다.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Lock ttl 은 무시한다. 프로세스가 죽으면 잠금도 함께 사라진다.
func (l *LocalLocker) Lock(ctx context.Context, key string, _ time.Duration) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, redis.ErrLockTimeout
	}
	var once sync.Once
	return func() { once.Do(func() { <-ch }) }, nil
}

// ── 만료 시각이 있는 집합 ──

type expiringSet struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func newExpiringSet() *expiringSet {
	return &expiringSet{entries: make(map[string]time.Time), now: time.Now}
}

// add 없거나 만료된 키면 추가하고 true
func (s *expiringSet) add(key string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if exp, ok := s.entries[key]; ok && now.Before(exp) {
		return false
	}
	s.entries[key] = now.Add(ttl)
	// 가끔 만료 항목 정리
	if len(s.entries)%256 == 0 {
		for k, exp := range s.entries {
			if !now.Before(exp) {
				delete(s.entries, k)
			}
		}
	}
	return true
}

func (s *expiringSet) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.entries[key]
	return ok && s.now().Before(exp)
}

func (s *expiringSet) remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// LocalDeduper 프로세스 내부 중복 제거
type LocalDeduper struct{ set *expiringSet }

func NewLocalDeduper() *LocalDeduper { return &LocalDeduper{set: newExpiringSet()} }

func (d *LocalDeduper) MarkOnce(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return d.set.add(key, ttl), nil
}

func (d *LocalDeduper) Forget(_ context.Context, key string) error {
	d.set.remove(key)
	return nil
}

// LocalBlacklist 프로세스 내부 토큰 블랙리스트
type LocalBlacklist struct{ set *expiringSet }

func NewLocalBlacklist() *LocalBlacklist { return &LocalBlacklist{set: newExpiringSet()} }

func (b *LocalBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		b.set.add(jti, ttl)
	}
	return nil
}

func (b *LocalBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return b.set.has(jti), nil
}
