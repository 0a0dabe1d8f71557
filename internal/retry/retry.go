package retry

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Policy 描述重试策略：Delays[i] 是第 i+1 次失败后的等待时长
type Policy struct {
	Delays []time.Duration
}

// NewPolicy 创建重试策略
func NewPolicy(delays ...time.Duration) Policy {
	return Policy{Delays: delays}
}

// Attempts 返回最大尝试次数
func (p Policy) Attempts() int {
	return len(p.Delays) + 1
}

// Do 执行 op，失败时按 Delays 等待后重试，全部失败返回最后一次的错误
func (p Policy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	var lastErr error
	attempts := p.Attempts()

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			if attempt > 1 {
				log.WithFields(log.Fields{"op": name, "attempt": attempt}).Info("重试后成功")
			}
			return nil
		}

		if attempt == attempts {
			break
		}

		delay := p.Delays[attempt-1]
		log.WithFields(log.Fields{
			"op":      name,
			"attempt": attempt,
			"delay":   delay,
		}).Warnf("执行失败，准备重试: %v", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s 重试被取消: %w", name, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s 在 %d 次尝试后失败: %w", name, attempts, lastErr)
}
