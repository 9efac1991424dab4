package transcript

// ParentRecord 整篇文档记录
// 每个来源视频对应一条，携带全文、LLM 生成的元数据和向量化信息
type ParentRecord struct {
	MDID     string // 文档标识（文件名 stem 的 MD5）
	Filepath string // 源文件绝对路径
	Filename string // 文件名 stem（不含后缀）
	Content  string // 清洗后的全文

	// LLM 生成的元数据
	Summary  string // 1-3 句话的视频简介
	Keywords string // 规范化后的逗号分隔标签串

	// 向量化信息
	EmbeddingModel    string // 模型名称
	EmbeddingProvider string // 提供方
	EmbeddingDim      int    // 向量维度
}

// ChunkRecord 文档片段记录
// 一篇文档拆分出多条，(MDID, ChunkID) 为复合键
type ChunkRecord struct {
	MDID    string // 所属文档标识
	ChunkID int    // 文档内从 0 开始的顺序索引

	RawContent     string // 原始片段（用于向量化）
	CleanedContent string // 深度清洗后的片段（用于 LLM 上下文）
	TokenCount     int    // 片段 token 数

	// 句子跨度（文档内句子下标，闭区间）
	StartSentence int
	EndSentence   int

	// 向量化信息
	EmbeddingModel    string
	EmbeddingProvider string
	EmbeddingDim      int
}

// VideoMetadata LLM 结构化输出：视频元数据
type VideoMetadata struct {
	Summary  string `json:"summary"`  // 视频简介
	Keywords string `json:"keywords"` // 自由文本关键词（待规范化）
}

// KeywordCount 关键词及其出现次数
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// DocumentInfo 文档列表项
type DocumentInfo struct {
	MDID     string `json:"md_id"`
	Filename string `json:"filename"`
}
