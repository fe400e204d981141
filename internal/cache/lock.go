package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker 基于 SET NX 的短时互斥锁
type Locker struct{}

// NewLocker 创建互斥锁
func NewLocker() *Locker {
	return &Locker{}
}

// TryLock 尝试加锁；缓存未启用时总是成功（由数据库唯一约束兜底）
// 返回的 release 只会删除自己持有的锁
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if !Enabled() {
		return func() {}, true, nil
	}
	full := buildKey("lock:" + key)
	token := uuid.NewString()
	ok, err := redisClient.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		_ = releaseScript.Run(context.Background(), redisClient, []string{full}, token).Err()
	}
	return release, true, nil
}
