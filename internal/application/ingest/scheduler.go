package ingest

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tubesage/backend/internal/infrastructure/log"
)

// Scheduler 摄取调度器
// 手动触发、目录监听触发和定时触发都汇聚到这里，
// 同一时刻最多只有一次摄取在运行（摄取本身必须串行）
type Scheduler struct {
	orchestrator *Orchestrator
	interval     time.Duration
	running      atomic.Bool
	logger       *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewScheduler 创建调度器
// interval 为 0 时不做定时扫描，仅响应手动/监听触发
func NewScheduler(orchestrator *Orchestrator, interval time.Duration) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		interval:     interval,
		logger:       log.NewModuleLogger("ingest", "scheduler"),
		stopCh:       make(chan struct{}),
	}
}

// Start 启动定时扫描（如果配置了间隔）
func (s *Scheduler) Start() {
	if s.interval <= 0 {
		return
	}

	s.logger.Info("Starting periodic ingestion", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.TriggerScan()
			}
		}
	}()
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

// TriggerScan 触发一次后台摄取
// 已有摄取在运行或调度器已停止时直接忽略，返回是否真正启动
func (s *Scheduler) TriggerScan() bool {
	select {
	case <-s.stopCh:
		s.logger.Debug("Scheduler stopped, trigger ignored")
		return false
	default:
	}

	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("Ingestion already running, trigger ignored")
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)

		if _, err := s.orchestrator.Run(context.Background(), 0); err != nil {
			s.logger.Error("Ingestion run failed", "error", err)
		}
	}()

	return true
}

// IsRunning 是否有摄取在运行
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}
