package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_TriggerScanSingleFlight(t *testing.T) {
	env := setupOrchestrator(t)
	scheduler := NewScheduler(env.orchestrator, 0)
	defer scheduler.Stop()

	// 空语料目录，扫描很快结束
	assert.True(t, scheduler.TriggerScan())
	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())
}

func TestScheduler_TriggerScanRefusedAfterStop(t *testing.T) {
	env := setupOrchestrator(t)
	scheduler := NewScheduler(env.orchestrator, 0)

	scheduler.Stop()

	// 停止后不再接受触发，否则会与 Stop 的 wg.Wait 竞争
	assert.False(t, scheduler.TriggerScan())
	assert.False(t, scheduler.IsRunning())
}
