package transcript

// ParentRepository 整篇文档记录仓库接口
type ParentRepository interface {
	// UpsertParent 插入或整体替换一条文档记录（按 md_id）
	UpsertParent(record *ParentRecord) error
	// GetParent 按 md_id 精确查找，不存在返回 ErrNotFound
	GetParent(mdID string) (*ParentRecord, error)
	// GetParentsByIDs 批量解析 md_id -> 记录（一次查询）
	GetParentsByIDs(mdIDs []string) (map[string]*ParentRecord, error)
	// ListParents 列出全部文档（按 filename 升序）
	ListParents() ([]*ParentRecord, error)
	// CountParents 统计文档数
	CountParents() (int, error)
	// DeleteParent 删除文档记录
	DeleteParent(mdID string) error
}

// ChunkRepository 文档片段仓库接口
type ChunkRepository interface {
	// UpsertChunks 批量插入或替换片段（按 (md_id, chunk_id)），
	// 并删除该文档下标 >= len(records) 的陈旧片段
	UpsertChunks(mdID string, records []*ChunkRecord) error
	// GetChunk 按复合键精确查找，不存在返回 ErrNotFound
	GetChunk(mdID string, chunkID int) (*ChunkRecord, error)
	// GetChunksByKeys 批量查找片段（一次查询）
	GetChunksByKeys(keys []ChunkKey) (map[ChunkKey]*ChunkRecord, error)
	// CountChunks 统计片段数
	CountChunks() (int, error)
	// DeleteChunks 删除文档的全部片段
	DeleteChunks(mdID string) error
}

// ChunkKey 片段复合键
type ChunkKey struct {
	MDID    string
	ChunkID int
}

// CheckpointStore 检查点持久化接口
type CheckpointStore interface {
	// Load 读取检查点，文件不存在时返回空检查点
	Load() (*Checkpoint, error)
	// Save 写入检查点并刷新 last_updated
	Save(checkpoint *Checkpoint) error
}
