package chunking

import (
	"fmt"
	"strings"
	"unicode"
)

// Config 分块参数
type Config struct {
	TargetTokens  int     // 贪心目标：运行计数达到后在句子边界收束
	HardMaxTokens int     // 硬上限：除单个超长句外永不超过
	HardMinTokens int     // 尾块下限：不足时尝试并入前一块
	OverlapRatio  float64 // 重叠预算 = OverlapRatio * TargetTokens
}

// DefaultConfig 默认分块参数
func DefaultConfig() Config {
	return Config{
		TargetTokens:  350,
		HardMaxTokens: 600,
		HardMinTokens: 100,
		OverlapRatio:  0.15,
	}
}

// Validate 校验分块参数
func (c Config) Validate() error {
	if c.TargetTokens <= 0 {
		return fmt.Errorf("target_tokens must be positive, got %d", c.TargetTokens)
	}
	if c.HardMaxTokens <= 0 {
		return fmt.Errorf("hard_max_tokens must be positive, got %d", c.HardMaxTokens)
	}
	if c.TargetTokens > c.HardMaxTokens {
		return fmt.Errorf("target_tokens (%d) must not exceed hard_max_tokens (%d)", c.TargetTokens, c.HardMaxTokens)
	}
	if c.HardMinTokens < 0 {
		return fmt.Errorf("hard_min_tokens must not be negative, got %d", c.HardMinTokens)
	}
	if c.OverlapRatio < 0 || c.OverlapRatio >= 1 {
		return fmt.Errorf("overlap_ratio must be in [0, 1), got %v", c.OverlapRatio)
	}
	return nil
}

// Chunk 分块结果
type Chunk struct {
	Text          string // 片段文本（句子以空格连接）
	TokenCount    int    // 片段 token 数（句子计数之和）
	StartSentence int    // 起始句下标（文档内，闭区间）
	EndSentence   int    // 结束句下标
}

// SentenceChunker 句子对齐的分块器
// 将文档按句末标点切分后贪心累积为带重叠的 token 受限片段。
// 单次顺序遍历产生确定性的结果：输入不变则分块不变
type SentenceChunker struct {
	counter *Counter
	config  Config
}

// NewSentenceChunker 创建分块器
func NewSentenceChunker(counter *Counter, config Config) (*SentenceChunker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunking config: %w", err)
	}
	return &SentenceChunker{
		counter: counter,
		config:  config,
	}, nil
}

// measuredSentence 带 token 计数的句子
type measuredSentence struct {
	Text   string
	Tokens int
	Index  int // 文档内句子下标
}

// Split 将文档切分为片段序列
func (s *SentenceChunker) Split(content string) []Chunk {
	sentences := s.measureSentences(content)
	if len(sentences) == 0 {
		return nil
	}

	overlapBudget := int(s.config.OverlapRatio * float64(s.config.TargetTokens))

	var chunks []Chunk
	var current []measuredSentence
	currentTokens := 0
	seedLen := 0 // current 开头属于重叠种子的句子数

	emit := func() {
		chunks = append(chunks, s.buildChunk(current, currentTokens))
	}

	// reseed 用刚收束的块尾部句子作为下一块的起点
	reseed := func(oversized bool) {
		if oversized {
			// 超长单句块不参与重叠，避免把它再次带进下一块
			current = nil
			currentTokens = 0
			seedLen = 0
			return
		}
		seed := overlapSeed(current, overlapBudget)
		current = append([]measuredSentence(nil), seed...)
		currentTokens = 0
		for _, sent := range seed {
			currentTokens += sent.Tokens
		}
		seedLen = len(seed)
	}

	for _, sent := range sentences {
		// 单句超过硬上限：独立成块（文档化的唯一越界例外）
		if sent.Tokens > s.config.HardMaxTokens {
			if len(current) > seedLen {
				emit()
			}
			current = []measuredSentence{sent}
			currentTokens = sent.Tokens
			seedLen = 0
			emit()
			reseed(true)
			continue
		}

		// 硬上限规则：加入会越界时先收束当前块
		if len(current) > 0 && currentTokens+sent.Tokens > s.config.HardMaxTokens {
			if len(current) > seedLen {
				emit()
				reseed(false)
			} else {
				// 只有重叠种子时放弃部分种子，保证新句能放下
				current = nil
				currentTokens = 0
				seedLen = 0
			}
		}

		current = append(current, sent)
		currentTokens += sent.Tokens

		// 目标规则：达到目标后在当前句子边界收束
		if currentTokens >= s.config.TargetTokens {
			emit()
			reseed(false)
		}
	}

	// 尾块规则
	if len(current) > seedLen {
		newSentences := current[seedLen:]
		newTokens := 0
		for _, sent := range newSentences {
			newTokens += sent.Tokens
		}

		switch {
		case currentTokens >= s.config.HardMinTokens:
			emit()
		case len(chunks) > 0 && chunks[len(chunks)-1].TokenCount+newTokens <= s.config.HardMaxTokens:
			// 并入前一块（重叠种子已在前一块中，只追加新句）
			prev := &chunks[len(chunks)-1]
			texts := make([]string, 0, len(newSentences))
			for _, sent := range newSentences {
				texts = append(texts, sent.Text)
			}
			prev.Text = prev.Text + " " + strings.Join(texts, " ")
			prev.TokenCount += newTokens
			prev.EndSentence = newSentences[len(newSentences)-1].Index
		default:
			// 无法并入时仍然输出，避免静默丢数据
			emit()
		}
	}

	return chunks
}

// buildChunk 由句子序列构造片段
func (s *SentenceChunker) buildChunk(sentences []measuredSentence, tokens int) Chunk {
	texts := make([]string, 0, len(sentences))
	for _, sent := range sentences {
		texts = append(texts, sent.Text)
	}
	return Chunk{
		Text:          strings.Join(texts, " "),
		TokenCount:    tokens,
		StartSentence: sentences[0].Index,
		EndSentence:   sentences[len(sentences)-1].Index,
	}
}

// measureSentences 切句并逐句计数
func (s *SentenceChunker) measureSentences(content string) []measuredSentence {
	parts := SplitSentences(content)
	sentences := make([]measuredSentence, 0, len(parts))
	for i, text := range parts {
		sentences = append(sentences, measuredSentence{
			Text:   text,
			Tokens: s.counter.Count(text),
			Index:  i,
		})
	}
	return sentences
}

// overlapSeed 从刚收束的块尾部倒序收集重叠句
// 累积将要越过预算时丢弃该句，除非它是唯一的重叠句
func overlapSeed(sentences []measuredSentence, budget int) []measuredSentence {
	if budget <= 0 || len(sentences) == 0 {
		return nil
	}

	var seed []measuredSentence
	total := 0
	for i := len(sentences) - 1; i >= 0; i-- {
		if total+sentences[i].Tokens > budget {
			if len(seed) == 0 {
				seed = []measuredSentence{sentences[i]}
			}
			break
		}
		seed = append([]measuredSentence{sentences[i]}, seed...)
		total += sentences[i].Tokens
	}
	return seed
}

// SplitSentences 按句末标点（. ! ? 后跟空白）切分文本
// 空句被丢弃；没有句末标点的文本整体作为一句
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r == '.' || r == '!' || r == '?' {
			atEnd := i == len(runes)-1
			nextIsSpace := !atEnd && unicode.IsSpace(runes[i+1])
			if atEnd || nextIsSpace {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
