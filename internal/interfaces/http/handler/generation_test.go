package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendOrDone(t *testing.T) {
	t.Run("正常推送", func(t *testing.T) {
		ch := make(chan string, 1)
		require.True(t, sendOrDone(context.Background(), ch, "chunk"))
		assert.Equal(t, "chunk", <-ch)
	})

	t.Run("取消后不再阻塞", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		// 无缓冲且无人消费，模拟客户端断开后消费循环已退出
		ch := make(chan string)
		result := make(chan bool, 1)
		go func() { result <- sendOrDone(ctx, ch, "chunk") }()

		select {
		case ok := <-result:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("取消后发送仍然阻塞")
		}
	})
}
