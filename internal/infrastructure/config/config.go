package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Database  DatabaseConfig  `yaml:"database"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTPPort string `yaml:"http_port"` // 固定端口，同时用于单例锁
}

// CorpusConfig 语料目录配置
type CorpusConfig struct {
	// DataDir 预清洗好的转写稿目录（每个视频一个 .md 文件）
	DataDir string `yaml:"data_dir"`
	// WatchEnabled 是否监听目录变化并自动触发摄取
	WatchEnabled bool `yaml:"watch_enabled"`
}

// DatabaseConfig SQLite 配置
type DatabaseConfig struct {
	Path string `yaml:"path"` // 为空时使用 ~/.tubesage/tubesage.db
}

// QdrantConfig 向量库连接配置
type QdrantConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"` // gRPC 端口
}

// EmbeddingConfig Embedding API 配置
type EmbeddingConfig struct {
	URL      string `yaml:"url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Provider string `yaml:"provider"`
	// Dim 部署期固定的向量维度，摄取和查询必须一致
	Dim int `yaml:"dim"`
}

// LLMConfig LLM Chat API 配置
type LLMConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// IngestConfig 摄取流水线配置
type IngestConfig struct {
	// CheckpointPath 检查点文件路径，为空时放在数据目录旁
	CheckpointPath string `yaml:"checkpoint_path"`
	// SleepAfterLLMCall 每次 LLM 调用后的固定延迟（限流配额）
	SleepAfterLLMCall time.Duration `yaml:"sleep_after_llm_call"`
	// RateLimitRetryDelay 命中配额限制时的重试间隔
	RateLimitRetryDelay time.Duration `yaml:"rate_limit_retry_delay"`
	// MaxRetryWait 单文档限流重试的墙钟上限，0 表示不设上限
	MaxRetryWait time.Duration `yaml:"max_retry_wait"`
	// ScanInterval 定时扫描间隔，0 表示仅手动/监听触发
	ScanInterval time.Duration `yaml:"scan_interval"`
}

// ChunkingConfig 分块参数
type ChunkingConfig struct {
	TargetTokens  int     `yaml:"target_tokens"`
	HardMaxTokens int     `yaml:"hard_max_tokens"`
	HardMinTokens int     `yaml:"hard_min_tokens"`
	OverlapRatio  float64 `yaml:"overlap_ratio"`
}

// NewConfig 创建配置（默认值）
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: ":19970",
		},
		Corpus: CorpusConfig{
			DataDir:      "",
			WatchEnabled: false,
		},
		Database: DatabaseConfig{
			Path: "",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Embedding: EmbeddingConfig{
			URL:      "https://api.openai.com/v1",
			Model:    "text-embedding-3-small",
			Provider: "openai",
			Dim:      768,
		},
		LLM: LLMConfig{
			URL:   "https://api.openai.com/v1",
			Model: "gpt-4o-mini",
		},
		Ingest: IngestConfig{
			SleepAfterLLMCall:   10 * time.Second,
			RateLimitRetryDelay: 120 * time.Second,
			MaxRetryWait:        0,
			ScanInterval:        0,
		},
		Chunking: ChunkingConfig{
			TargetTokens:  350,
			HardMaxTokens: 600,
			HardMinTokens: 100,
			OverlapRatio:  0.15,
		},
	}
}

// Load 从 YAML 文件加载配置，文件中的字段覆盖默认值
// path 为空时直接返回默认配置
func Load(path string) (*Config, error) {
	cfg := NewConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// DataDir 获取应用数据目录（~/.tubesage）
func DataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tubesage"), nil
}
