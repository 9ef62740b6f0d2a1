package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const LockKeyPrefix = "lock:job"

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// DistLock 多实例部署时保证同一个定时任务同一时刻只有一个实例在跑
type DistLock struct {
	RDB *redis.Client
}

func (l *DistLock) key(name string) string {
	return fmt.Sprintf("%s:%s", LockKeyPrefix, name)
}

// Acquire 请求加分布式锁
func (l *DistLock) Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	return l.RDB.SetNX(ctx, l.key(name), token, ttl).Result()
}

// Release 用lua保证原子性，只释放自己持有的锁
func (l *DistLock) Release(ctx context.Context, name, token string) error {
	_, err := releaseScript.Run(ctx, l.RDB, []string{l.key(name)}, token).Result()
	return err
}
