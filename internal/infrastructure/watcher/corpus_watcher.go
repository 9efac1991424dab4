// Package watcher 提供语料目录监听功能
package watcher

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tubesage/backend/internal/infrastructure/log"
)

// TriggerFunc 语料变化后的回调
type TriggerFunc func()

// CorpusWatcher 语料目录监听器
// 监听转写稿目录中 .md 文件的创建和写入，防抖后触发一次摄取
type CorpusWatcher struct {
	corpusDir     string
	debounceDelay time.Duration
	trigger       TriggerFunc
	watcher       *fsnotify.Watcher
	logger        *slog.Logger

	// 防抖相关
	debounceTimer *time.Timer
	debounceMu    sync.Mutex

	// 控制
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewCorpusWatcher 创建语料监听器
func NewCorpusWatcher(corpusDir string, trigger TriggerFunc) (*CorpusWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &CorpusWatcher{
		corpusDir:     corpusDir,
		debounceDelay: 500 * time.Millisecond,
		trigger:       trigger,
		watcher:       watcher,
		logger:        log.NewModuleLogger("watcher", "corpus_watcher"),
		stopCh:        make(chan struct{}),
	}, nil
}

// Start 启动监听
func (w *CorpusWatcher) Start() error {
	w.logger.Info("Starting corpus watcher", "corpus_dir", w.corpusDir)

	if err := w.watcher.Add(w.corpusDir); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.watchLoop()

	return nil
}

// Stop 停止监听
func (w *CorpusWatcher) Stop() {
	w.logger.Info("Stopping corpus watcher")

	close(w.stopCh)
	w.watcher.Close()
	w.wg.Wait()

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceMu.Unlock()

	w.logger.Info("Corpus watcher stopped")
}

// watchLoop 事件监听循环
func (w *CorpusWatcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)
		}
	}
}

// handleFsEvent 处理文件系统事件
// 编辑器保存会连发多个事件，统一防抖成一次触发
func (w *CorpusWatcher) handleFsEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, ".md") {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}

	w.logger.Debug("Corpus file changed", "path", event.Name, "op", event.Op.String())

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		w.logger.Info("Corpus change detected, triggering ingestion")
		w.trigger()
	})
}
