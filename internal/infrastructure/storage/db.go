package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tubesage/backend/internal/infrastructure/config"
	_ "modernc.org/sqlite"
)

// GetDBPath 获取默认数据库路径
// Windows: %USERPROFILE%\.tubesage\tubesage.db
// macOS/Linux: ~/.tubesage/tubesage.db
func GetDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dbPath := filepath.Join(homeDir, ".tubesage", "tubesage.db")
	return dbPath, nil
}

// OpenDB 打开数据库连接
// path 为空时使用默认路径
func OpenDB(path string) (*sql.DB, error) {
	dbPath := path
	if dbPath == "" {
		var err error
		dbPath, err = GetDBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get database path: %w", err)
		}
	}

	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// ProvideDB 打开数据库连接并初始化表结构（Wire Provider）
func ProvideDB(cfg *config.Config) (*sql.DB, error) {
	db, err := OpenDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	if err := InitDatabase(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// InitDatabase 初始化表结构
func InitDatabase(db *sql.DB) error {
	// 创建 parent_videos 表：整篇文档记录
	createParentTableSQL := `
	CREATE TABLE IF NOT EXISTS parent_videos (
		md_id TEXT PRIMARY KEY,
		filepath TEXT NOT NULL,
		filename TEXT NOT NULL,
		content TEXT NOT NULL,
		summary TEXT NOT NULL,
		keywords TEXT NOT NULL,
		embedding_model TEXT NOT NULL,
		embedding_provider TEXT NOT NULL,
		embedding_dim INTEGER NOT NULL
	);`

	if _, err := db.Exec(createParentTableSQL); err != nil {
		return fmt.Errorf("failed to create parent_videos table: %w", err)
	}

	createParentIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_parent_videos_filename ON parent_videos(filename);`

	if _, err := db.Exec(createParentIndexSQL); err != nil {
		return fmt.Errorf("failed to create parent_videos index: %w", err)
	}

	// 创建 video_chunks 表：文档片段记录
	createChunkTableSQL := `
	CREATE TABLE IF NOT EXISTS video_chunks (
		md_id TEXT NOT NULL,
		chunk_id INTEGER NOT NULL,
		raw_content TEXT NOT NULL,
		cleaned_content TEXT NOT NULL,
		token_count INTEGER NOT NULL,
		start_sentence INTEGER NOT NULL,
		end_sentence INTEGER NOT NULL,
		embedding_model TEXT NOT NULL,
		embedding_provider TEXT NOT NULL,
		embedding_dim INTEGER NOT NULL,
		PRIMARY KEY (md_id, chunk_id)
	);`

	if _, err := db.Exec(createChunkTableSQL); err != nil {
		return fmt.Errorf("failed to create video_chunks table: %w", err)
	}

	createChunkIndexSQL := `
	CREATE INDEX IF NOT EXISTS idx_video_chunks_md_id ON video_chunks(md_id);`

	if _, err := db.Exec(createChunkIndexSQL); err != nil {
		return fmt.Errorf("failed to create video_chunks index: %w", err)
	}

	return nil
}
