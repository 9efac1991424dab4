package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tubesage/backend/internal/domain/transcript"
)

// 确保 FileStore 实现了 transcript.CheckpointStore 接口
var _ transcript.CheckpointStore = (*FileStore)(nil)

// FileStore 基于 JSON 文件的检查点存储
type FileStore struct {
	path string
}

// NewFileStore 创建检查点存储
// path 为空时使用 ~/.tubesage/ingest_checkpoint.json
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".tubesage", "ingest_checkpoint.json")
	}

	return &FileStore{path: path}, nil
}

// Path 检查点文件路径
func (s *FileStore) Path() string {
	return s.path
}

// Load 读取检查点，文件不存在时返回空检查点
func (s *FileStore) Load() (*transcript.Checkpoint, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return transcript.NewCheckpoint(), nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var cp transcript.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint file: %w", err)
	}
	if cp.ProcessedFiles == nil {
		cp.ProcessedFiles = make(map[string]string)
	}

	return &cp, nil
}

// Save 写入检查点并刷新 last_updated
// 先写临时文件再重命名，避免进程中断留下半个文件
func (s *FileStore) Save(cp *transcript.Checkpoint) error {
	cp.LastUpdated = time.Now().Format(time.RFC3339)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	return nil
}
