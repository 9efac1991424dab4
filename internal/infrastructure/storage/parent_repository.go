package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tubesage/backend/internal/domain/transcript"
)

// 确保 ParentRepositoryImpl 实现了 transcript.ParentRepository 接口
var _ transcript.ParentRepository = (*ParentRepositoryImpl)(nil)

// ParentRepositoryImpl 整篇文档仓库实现
type ParentRepositoryImpl struct {
	db *sql.DB
}

// NewParentRepository 创建整篇文档仓库实例
func NewParentRepository(db *sql.DB) transcript.ParentRepository {
	return &ParentRepositoryImpl{db: db}
}

// UpsertParent 插入或整体替换一条文档记录
func (r *ParentRepositoryImpl) UpsertParent(record *transcript.ParentRecord) error {
	query := `
		INSERT OR REPLACE INTO parent_videos (
			md_id, filepath, filename, content, summary, keywords,
			embedding_model, embedding_provider, embedding_dim
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(
		query,
		record.MDID,
		record.Filepath,
		record.Filename,
		record.Content,
		record.Summary,
		record.Keywords,
		record.EmbeddingModel,
		record.EmbeddingProvider,
		record.EmbeddingDim,
	)

	return err
}

// GetParent 按 md_id 精确查找
func (r *ParentRepositoryImpl) GetParent(mdID string) (*transcript.ParentRecord, error) {
	query := `
		SELECT md_id, filepath, filename, content, summary, keywords,
			embedding_model, embedding_provider, embedding_dim
		FROM parent_videos WHERE md_id = ?`

	record := &transcript.ParentRecord{}
	err := r.db.QueryRow(query, mdID).Scan(
		&record.MDID,
		&record.Filepath,
		&record.Filename,
		&record.Content,
		&record.Summary,
		&record.Keywords,
		&record.EmbeddingModel,
		&record.EmbeddingProvider,
		&record.EmbeddingDim,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, transcript.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query parent: %w", err)
	}

	return record, nil
}

// GetParentsByIDs 批量解析 md_id -> 记录
func (r *ParentRepositoryImpl) GetParentsByIDs(mdIDs []string) (map[string]*transcript.ParentRecord, error) {
	result := make(map[string]*transcript.ParentRecord)
	if len(mdIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(mdIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		SELECT md_id, filepath, filename, content, summary, keywords,
			embedding_model, embedding_provider, embedding_dim
		FROM parent_videos WHERE md_id IN (%s)`, placeholders)

	args := make([]interface{}, len(mdIDs))
	for i, id := range mdIDs {
		args[i] = id
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record := &transcript.ParentRecord{}
		if err := rows.Scan(
			&record.MDID,
			&record.Filepath,
			&record.Filename,
			&record.Content,
			&record.Summary,
			&record.Keywords,
			&record.EmbeddingModel,
			&record.EmbeddingProvider,
			&record.EmbeddingDim,
		); err != nil {
			return nil, fmt.Errorf("failed to scan parent: %w", err)
		}
		result[record.MDID] = record
	}

	return result, rows.Err()
}

// ListParents 列出全部文档（按 filename 升序）
func (r *ParentRepositoryImpl) ListParents() ([]*transcript.ParentRecord, error) {
	query := `
		SELECT md_id, filepath, filename, content, summary, keywords,
			embedding_model, embedding_provider, embedding_dim
		FROM parent_videos ORDER BY filename ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list parents: %w", err)
	}
	defer rows.Close()

	var records []*transcript.ParentRecord
	for rows.Next() {
		record := &transcript.ParentRecord{}
		if err := rows.Scan(
			&record.MDID,
			&record.Filepath,
			&record.Filename,
			&record.Content,
			&record.Summary,
			&record.Keywords,
			&record.EmbeddingModel,
			&record.EmbeddingProvider,
			&record.EmbeddingDim,
		); err != nil {
			return nil, fmt.Errorf("failed to scan parent: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// CountParents 统计文档数
func (r *ParentRepositoryImpl) CountParents() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM parent_videos`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count parents: %w", err)
	}
	return count, nil
}

// DeleteParent 删除文档记录
func (r *ParentRepositoryImpl) DeleteParent(mdID string) error {
	_, err := r.db.Exec(`DELETE FROM parent_videos WHERE md_id = ?`, mdID)
	return err
}
