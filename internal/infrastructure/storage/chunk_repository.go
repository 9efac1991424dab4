package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tubesage/backend/internal/domain/transcript"
)

// 确保 ChunkRepositoryImpl 实现了 transcript.ChunkRepository 接口
var _ transcript.ChunkRepository = (*ChunkRepositoryImpl)(nil)

// ChunkRepositoryImpl 文档片段仓库实现
type ChunkRepositoryImpl struct {
	db *sql.DB
}

// NewChunkRepository 创建文档片段仓库实例
func NewChunkRepository(db *sql.DB) transcript.ChunkRepository {
	return &ChunkRepositoryImpl{db: db}
}

// UpsertChunks 批量插入或替换片段，并删除超出新分块数的陈旧片段
func (r *ChunkRepositoryImpl) UpsertChunks(mdID string, records []*transcript.ChunkRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO video_chunks (
			md_id, chunk_id, raw_content, cleaned_content, token_count,
			start_sentence, end_sentence,
			embedding_model, embedding_provider, embedding_dim
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, record := range records {
		if _, err := stmt.Exec(
			mdID,
			record.ChunkID,
			record.RawContent,
			record.CleanedContent,
			record.TokenCount,
			record.StartSentence,
			record.EndSentence,
			record.EmbeddingModel,
			record.EmbeddingProvider,
			record.EmbeddingDim,
		); err != nil {
			return fmt.Errorf("failed to upsert chunk %d: %w", record.ChunkID, err)
		}
	}

	// 文档重摄取后片段变少时，清掉下标超出的旧片段
	if _, err := tx.Exec(
		`DELETE FROM video_chunks WHERE md_id = ? AND chunk_id >= ?`,
		mdID, len(records),
	); err != nil {
		return fmt.Errorf("failed to delete stale chunks: %w", err)
	}

	return tx.Commit()
}

// GetChunk 按复合键精确查找
func (r *ChunkRepositoryImpl) GetChunk(mdID string, chunkID int) (*transcript.ChunkRecord, error) {
	query := `
		SELECT md_id, chunk_id, raw_content, cleaned_content, token_count,
			start_sentence, end_sentence,
			embedding_model, embedding_provider, embedding_dim
		FROM video_chunks WHERE md_id = ? AND chunk_id = ?`

	record := &transcript.ChunkRecord{}
	err := r.db.QueryRow(query, mdID, chunkID).Scan(
		&record.MDID,
		&record.ChunkID,
		&record.RawContent,
		&record.CleanedContent,
		&record.TokenCount,
		&record.StartSentence,
		&record.EndSentence,
		&record.EmbeddingModel,
		&record.EmbeddingProvider,
		&record.EmbeddingDim,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transcript.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk: %w", err)
	}

	return record, nil
}

// GetChunksByKeys 批量查找片段
func (r *ChunkRepositoryImpl) GetChunksByKeys(keys []transcript.ChunkKey) (map[transcript.ChunkKey]*transcript.ChunkRecord, error) {
	result := make(map[transcript.ChunkKey]*transcript.ChunkRecord)
	if len(keys) == 0 {
		return result, nil
	}

	conditions := make([]string, len(keys))
	args := make([]interface{}, 0, len(keys)*2)
	for i, key := range keys {
		conditions[i] = "(md_id = ? AND chunk_id = ?)"
		args = append(args, key.MDID, key.ChunkID)
	}

	query := fmt.Sprintf(`
		SELECT md_id, chunk_id, raw_content, cleaned_content, token_count,
			start_sentence, end_sentence,
			embedding_model, embedding_provider, embedding_dim
		FROM video_chunks WHERE %s`, strings.Join(conditions, " OR "))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record := &transcript.ChunkRecord{}
		if err := rows.Scan(
			&record.MDID,
			&record.ChunkID,
			&record.RawContent,
			&record.CleanedContent,
			&record.TokenCount,
			&record.StartSentence,
			&record.EndSentence,
			&record.EmbeddingModel,
			&record.EmbeddingProvider,
			&record.EmbeddingDim,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		result[transcript.ChunkKey{MDID: record.MDID, ChunkID: record.ChunkID}] = record
	}

	return result, rows.Err()
}

// CountChunks 统计片段数
func (r *ChunkRepositoryImpl) CountChunks() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM video_chunks`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

// DeleteChunks 删除文档的全部片段
func (r *ChunkRepositoryImpl) DeleteChunks(mdID string) error {
	_, err := r.db.Exec(`DELETE FROM video_chunks WHERE md_id = ?`, mdID)
	return err
}
