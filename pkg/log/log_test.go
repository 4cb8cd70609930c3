package log

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerIsUsableConcurrently(t *testing.T) {
	assert.NotNil(t, GetZapLogger())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			Infow("request", "worker", i)
			_ = GetZapLogger()
		}(i)
	}
	wg.Wait()
}

func TestInit(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			require.NoError(t, Init(level))
			assert.NotNil(t, GetZapLogger())
		})
	}

	assert.Error(t, Init("chatty"))
}

func TestPackageLevelLogging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	Debugw("append", "count", 3)
	Warnw("trailing bytes", "bytes", 10)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "append", entries[0].Message)
	assert.Equal(t, int64(3), entries[0].ContextMap()["count"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}
