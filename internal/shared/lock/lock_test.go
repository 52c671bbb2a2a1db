package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-attendance/internal/shared/lock"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SerialisesSameKey(t *testing.T) {
	locker := lock.NewLocal()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, lock.EmployeeKey("e1"))
			require.NoError(t, err)
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestLocal_DifferentKeysDoNotBlock(t *testing.T) {
	locker := lock.NewLocal()
	ctx := context.Background()

	r1, err := locker.Acquire(ctx, "a")
	require.NoError(t, err)
	defer r1()

	ctx2, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	r2, err := locker.Acquire(ctx2, "b")
	require.NoError(t, err)
	r2()
}

func TestLocal_ContextCancelled(t *testing.T) {
	locker := lock.NewLocal()

	release, err := locker.Acquire(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()

	again, err := locker.Acquire(context.Background(), "a")
	require.NoError(t, err)
	again()
}

func TestRedis_AcquireAndRelease(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := lock.EmployeeKey("e1")

	locker := lock.NewRedis(rdb,
		lock.WithTTL(10*time.Second),
		lock.WithRetryInterval(time.Millisecond),
		lock.WithTokenFunc(func() string { return "tok" }),
	)

	mock.ExpectSetNX(key, "tok", 10*time.Second).SetVal(false)
	mock.ExpectSetNX(key, "tok", 10*time.Second).SetVal(true)
	mock.ExpectEval(lock.ReleaseScript, []string{key}, "tok").SetVal(int64(1))

	release, err := locker.Acquire(context.Background(), key)
	require.NoError(t, err)
	release()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_GivesUpOnContext(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	key := lock.EmployeeKey("e1")
	locker := lock.NewRedis(rdb,
		lock.WithRetryInterval(50*time.Millisecond),
		lock.WithTokenFunc(func() string { return "tok" }),
	)

	mock.ExpectSetNX(key, "tok", 30*time.Second).SetVal(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := locker.Acquire(ctx, key)

	assert.ErrorIs(t, err, lock.ErrNotAcquired)
}
