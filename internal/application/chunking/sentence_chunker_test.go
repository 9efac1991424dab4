package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordEstimator 按空白分词计数，让测试 token 数直观可控
type wordEstimator struct{}

func (wordEstimator) CountTokens(text string) int {
	return len(strings.Fields(text))
}

// sentence 构造恰好 n 个词的句子
func sentence(word string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = word
	}
	return strings.Join(words, " ") + "."
}

func newTestChunker(t *testing.T, cfg Config) *SentenceChunker {
	t.Helper()
	chunker, err := NewSentenceChunker(NewCounter(wordEstimator{}), cfg)
	require.NoError(t, err)
	return chunker
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.TargetTokens = 700 // 超过 hard max
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.OverlapRatio = 1.0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.HardMinTokens = -1
	assert.Error(t, bad.Validate())
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "基本切分",
			text: "First sentence. Second one! Third?",
			want: []string{"First sentence.", "Second one!", "Third?"},
		},
		{
			name: "无句末标点整体一句",
			text: "no terminal punctuation here",
			want: []string{"no terminal punctuation here"},
		},
		{
			name: "小数点不切分",
			text: "Version 2.5 is out. Great news.",
			want: []string{"Version 2.5 is out.", "Great news."},
		},
		{
			name: "空输入",
			text: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitSentences(tt.text))
		})
	}
}

func TestChunker_EmptyInput(t *testing.T) {
	chunker := newTestChunker(t, Config{TargetTokens: 20, HardMaxTokens: 40, HardMinTokens: 5, OverlapRatio: 0})
	assert.Nil(t, chunker.Split(""))
}

func TestChunker_GreedyTargetBoundary(t *testing.T) {
	chunker := newTestChunker(t, Config{TargetTokens: 20, HardMaxTokens: 40, HardMinTokens: 5, OverlapRatio: 0})

	// 5 句各 10 token，目标 20：每两句收束一次
	text := strings.Repeat(sentence("word", 10)+" ", 5)
	chunks := chunker.Split(text)

	require.Len(t, chunks, 3)
	assert.Equal(t, 20, chunks[0].TokenCount)
	assert.Equal(t, 0, chunks[0].StartSentence)
	assert.Equal(t, 1, chunks[0].EndSentence)
	assert.Equal(t, 20, chunks[1].TokenCount)
	assert.Equal(t, 2, chunks[1].StartSentence)
	// 尾句不足目标但超过下限，独立成块
	assert.Equal(t, 10, chunks[2].TokenCount)
	assert.Equal(t, 4, chunks[2].StartSentence)
}

func TestChunker_Deterministic(t *testing.T) {
	chunker := newTestChunker(t, DefaultConfig())

	text := strings.Repeat(sentence("alpha", 30)+" "+sentence("beta", 45)+" ", 20)
	first := chunker.Split(text)
	second := chunker.Split(text)

	assert.Equal(t, first, second, "同一输入必须产生相同的分块")
}

func TestChunker_OverlapSeedsNextChunk(t *testing.T) {
	chunker := newTestChunker(t, Config{TargetTokens: 20, HardMaxTokens: 40, HardMinTokens: 5, OverlapRatio: 0.5})

	// 重叠预算 10 token：每块收束后上一句（10 token）作为下一块起点
	text := strings.Repeat(sentence("word", 10)+" ", 5)
	chunks := chunker.Split(text)

	require.Len(t, chunks, 4)
	for i := 1; i < len(chunks); i++ {
		assert.Equal(t, chunks[i-1].EndSentence, chunks[i].StartSentence,
			"块 %d 应以前一块的末句开头", i)
	}
}

func TestChunker_HardMaxNeverExceeded(t *testing.T) {
	cfg := Config{TargetTokens: 30, HardMaxTokens: 35, HardMinTokens: 5, OverlapRatio: 0.15}
	chunker := newTestChunker(t, cfg)

	// 两句各 20 token：合并会越过硬上限，必须分开
	text := sentence("word", 20) + " " + sentence("text", 20)
	chunks := chunker.Split(text)

	require.Len(t, chunks, 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, chunk.TokenCount, cfg.HardMaxTokens)
	}
}

func TestChunker_OversizedSentenceAlone(t *testing.T) {
	cfg := Config{TargetTokens: 20, HardMaxTokens: 40, HardMinTokens: 5, OverlapRatio: 0.5}
	chunker := newTestChunker(t, cfg)

	// 中间一句 50 token 超过硬上限：独立成块，且不作为后续块的重叠种子
	text := sentence("before", 10) + " " + sentence("huge", 50) + " " + sentence("after", 10)
	chunks := chunker.Split(text)

	require.Len(t, chunks, 3)
	assert.Equal(t, 10, chunks[0].TokenCount)
	assert.Equal(t, 50, chunks[1].TokenCount)
	assert.Equal(t, 1, chunks[1].StartSentence)
	assert.Equal(t, 1, chunks[1].EndSentence)
	// 超长句不得泄漏进下一块
	assert.Equal(t, 2, chunks[2].StartSentence)
	assert.Equal(t, 10, chunks[2].TokenCount)
}

func TestChunker_TailMergesIntoPrevious(t *testing.T) {
	cfg := Config{TargetTokens: 20, HardMaxTokens: 40, HardMinTokens: 8, OverlapRatio: 0}
	chunker := newTestChunker(t, cfg)

	// 尾句 3 token 低于下限 8，并入前一块
	text := sentence("word", 10) + " " + sentence("text", 10) + " " + sentence("tiny", 3)
	chunks := chunker.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, 23, chunks[0].TokenCount)
	assert.Equal(t, 0, chunks[0].StartSentence)
	assert.Equal(t, 2, chunks[0].EndSentence)
}

func TestChunker_TailEmittedWhenMergeWouldExceedHardMax(t *testing.T) {
	cfg := Config{TargetTokens: 30, HardMaxTokens: 32, HardMinTokens: 8, OverlapRatio: 0}
	chunker := newTestChunker(t, cfg)

	// 尾句低于下限但并入会越过硬上限，宁可输出欠长块也不丢数据
	text := sentence("word", 30) + " " + sentence("tiny", 5)
	chunks := chunker.Split(text)

	require.Len(t, chunks, 2)
	assert.Equal(t, 30, chunks[0].TokenCount)
	assert.Equal(t, 5, chunks[1].TokenCount)
}

func TestCounter_Memoizes(t *testing.T) {
	calls := 0
	counter := NewCounter(countingEstimator{calls: &calls})

	assert.Equal(t, 2, counter.Count("two words"))
	assert.Equal(t, 2, counter.Count("two words"))
	assert.Equal(t, 1, calls, "相同文本只应调用一次底层估算")
	assert.Equal(t, 1, counter.CacheSize())
}

// countingEstimator 记录调用次数的估算器
type countingEstimator struct {
	calls *int
}

func (c countingEstimator) CountTokens(text string) int {
	*c.calls++
	return len(strings.Fields(text))
}
