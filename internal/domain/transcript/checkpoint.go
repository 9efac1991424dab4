package transcript

import "time"

// Checkpoint 摄取进度检查点
// 文件名出现在 ProcessedFiles 中表示该文档的 parent 与 chunk 写入全部完成；
// 不在其中的文件下次运行会被完整重新处理（upsert 幂等，重复处理无害）
type Checkpoint struct {
	ProcessedFiles map[string]string `json:"processed_files"` // filename -> 完成时间（RFC3339）
	TotalProcessed int               `json:"total_processed"`
	LastError      *IngestError      `json:"last_error"`
	StartedAt      string            `json:"started_at"`
	LastUpdated    string            `json:"last_updated"`
}

// IngestError 单文档摄取失败信息
type IngestError struct {
	File      string `json:"file"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// NewCheckpoint 创建空检查点
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{
		ProcessedFiles: make(map[string]string),
	}
}

// IsProcessed 检查文件是否已完成摄取
func (c *Checkpoint) IsProcessed(filename string) bool {
	_, ok := c.ProcessedFiles[filename]
	return ok
}

// MarkProcessed 标记文件完成
func (c *Checkpoint) MarkProcessed(filename string, now time.Time) {
	if c.ProcessedFiles == nil {
		c.ProcessedFiles = make(map[string]string)
	}
	c.ProcessedFiles[filename] = now.Format(time.RFC3339)
	c.TotalProcessed = len(c.ProcessedFiles)
}

// RecordError 记录单文档失败
// 文件保持未完成状态，下次运行会重试
func (c *Checkpoint) RecordError(filename string, err error, now time.Time) {
	c.LastError = &IngestError{
		File:      filename,
		Error:     err.Error(),
		Timestamp: now.Format(time.RFC3339),
	}
}

// Reset 清空检查点
// 存储为空时使用，防止陈旧检查点声称数据仍然存在
func (c *Checkpoint) Reset() {
	c.ProcessedFiles = make(map[string]string)
	c.TotalProcessed = 0
	c.LastError = nil
	c.StartedAt = ""
	c.LastUpdated = ""
}
