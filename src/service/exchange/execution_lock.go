package exchange

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/go-vote-trader/src/model"
)

type ExecutionLockInterface interface {
	TryAcquire(holder string, timeoutMs int64) bool
	Release()
	ForceRelease()
	Holder() string
}

// ExecutionLock is the single process-wide execution context. All order
// placement funnels through it, so at most one open or close sequence
// runs at a time. A Redis marker mirrors the holder for crash
// diagnostics and is force-cleared at startup.
type ExecutionLock struct {
	RDB        *redis.Client
	Ctx        *context.Context
	CurrentBot *model.Bot

	slot chan struct{}

	mu         sync.Mutex
	holder     string
	acquiredAt int64
}

func NewExecutionLock(rdb *redis.Client, ctx *context.Context, currentBot *model.Bot) *ExecutionLock {
	return &ExecutionLock{
		RDB:        rdb,
		Ctx:        ctx,
		CurrentBot: currentBot,
		slot:       make(chan struct{}, 1),
	}
}

// TryAcquire waits a bounded time for the execution context. It never
// blocks past the timeout so a stuck holder cannot stall the caller
// forever.
func (l *ExecutionLock) TryAcquire(holder string, timeoutMs int64) bool {
	timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case l.slot <- struct{}{}:
		l.mu.Lock()
		l.holder = holder
		l.acquiredAt = time.Now().UnixMilli()
		l.mu.Unlock()

		if l.RDB != nil {
			l.RDB.Set(*l.Ctx, l.getLockMarkerKey(), holder, time.Minute)
		}

		return true
	case <-timer.C:
		return false
	}
}

func (l *ExecutionLock) Release() {
	l.mu.Lock()
	l.holder = ""
	l.acquiredAt = 0
	l.mu.Unlock()

	select {
	case <-l.slot:
	default:
	}

	if l.RDB != nil {
		l.RDB.Del(*l.Ctx, l.getLockMarkerKey())
	}
}

// ForceRelease clears the slot and any stale Redis marker left behind
// by a crashed process. Called once at startup before workers begin.
func (l *ExecutionLock) ForceRelease() {
	if l.RDB != nil {
		stale := l.RDB.Get(*l.Ctx, l.getLockMarkerKey()).Val()
		if len(stale) > 0 {
			log.Printf("[lock] Clearing stale execution lock marker, holder was: %s", stale)
		}
	}

	l.Release()
}

func (l *ExecutionLock) Holder() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.holder
}

func (l *ExecutionLock) getLockMarkerKey() string {
	return fmt.Sprintf("execution-lock-bot-%d", l.CurrentBot.Id)
}
