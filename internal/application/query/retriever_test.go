package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/vector"
)

// MockVectorSearcher 模拟向量检索
type MockVectorSearcher struct {
	mock.Mock
}

func (m *MockVectorSearcher) SearchParents(ctx context.Context, queryVector []float32, limit int) ([]*vector.ParentHit, error) {
	args := m.Called(ctx, queryVector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vector.ParentHit), args.Error(1)
}

func (m *MockVectorSearcher) SearchChunks(ctx context.Context, queryVector []float32, limit int) ([]*vector.ChunkHit, error) {
	args := m.Called(ctx, queryVector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*vector.ChunkHit), args.Error(1)
}

// MockQueryEmbedder 模拟查询向量化
type MockQueryEmbedder struct {
	mock.Mock
}

func (m *MockQueryEmbedder) EmbedText(text string) ([]float32, error) {
	args := m.Called(text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

// MockParentRepository 模拟父文档仓库
type MockParentRepository struct {
	mock.Mock
}

func (m *MockParentRepository) UpsertParent(record *transcript.ParentRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockParentRepository) GetParent(mdID string) (*transcript.ParentRecord, error) {
	args := m.Called(mdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transcript.ParentRecord), args.Error(1)
}

func (m *MockParentRepository) GetParentsByIDs(mdIDs []string) (map[string]*transcript.ParentRecord, error) {
	args := m.Called(mdIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*transcript.ParentRecord), args.Error(1)
}

func (m *MockParentRepository) ListParents() ([]*transcript.ParentRecord, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transcript.ParentRecord), args.Error(1)
}

func (m *MockParentRepository) CountParents() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockParentRepository) DeleteParent(mdID string) error {
	args := m.Called(mdID)
	return args.Error(0)
}

func TestRetriever_ChunkedModeCitations(t *testing.T) {
	searcher := new(MockVectorSearcher)
	embedder := new(MockQueryEmbedder)
	parentRepo := new(MockParentRepository)

	queryVector := []float32{0.1, 0.2}
	embedder.On("EmbedText", "what is chunking").Return(queryVector, nil)

	mdX := transcript.DocumentID("video_x.md")
	searcher.On("SearchChunks", mock.Anything, queryVector, 3).Return([]*vector.ChunkHit{
		{MDID: mdX, ChunkID: 2, Content: "chunking is splitting text", Score: 0.9},
		{MDID: mdX, ChunkID: 0, Content: "introduction", Score: 0.5},
	}, nil)

	// 两个命中同属一个文档，文件名只解析一次
	parentRepo.On("GetParentsByIDs", []string{mdX}).Return(map[string]*transcript.ParentRecord{
		mdX: {MDID: mdX, Filename: "video_x"},
	}, nil)

	retriever := NewRetriever(searcher, parentRepo, embedder)
	result, err := retriever.Retrieve(context.Background(), "what is chunking", ModeChunked, 3)
	require.NoError(t, err)

	require.Len(t, result.Blocks, 2)
	assert.Equal(t, "video_x (Chunk 2)", result.Blocks[0].Citation)
	assert.Equal(t, "video_x (Chunk 0)", result.Blocks[1].Citation)
	assert.Contains(t, result.Context(), "[Result 1] Source: video_x (Chunk 2)")

	parentRepo.AssertNumberOfCalls(t, "GetParentsByIDs", 1)
}

func TestRetriever_ChunkedModeUnknownParent(t *testing.T) {
	searcher := new(MockVectorSearcher)
	embedder := new(MockQueryEmbedder)
	parentRepo := new(MockParentRepository)

	queryVector := []float32{0.1}
	embedder.On("EmbedText", mock.Anything).Return(queryVector, nil)

	// 片段引用了不存在的父文档，应退化为 Unknown 而不是报错
	searcher.On("SearchChunks", mock.Anything, queryVector, 5).Return([]*vector.ChunkHit{
		{MDID: "orphaned", ChunkID: 1, Content: "orphan chunk", Score: 0.8},
	}, nil)
	parentRepo.On("GetParentsByIDs", []string{"orphaned"}).Return(map[string]*transcript.ParentRecord{}, nil)

	retriever := NewRetriever(searcher, parentRepo, embedder)
	result, err := retriever.Retrieve(context.Background(), "anything", ModeChunked, 5)
	require.NoError(t, err)

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "Unknown (Chunk 1)", result.Blocks[0].Citation)
}

func TestRetriever_WholeModeCitesFilename(t *testing.T) {
	searcher := new(MockVectorSearcher)
	embedder := new(MockQueryEmbedder)
	parentRepo := new(MockParentRepository)

	queryVector := []float32{0.3}
	embedder.On("EmbedText", mock.Anything).Return(queryVector, nil)

	mdID := transcript.DocumentID("intro.md")
	searcher.On("SearchParents", mock.Anything, queryVector, 5).Return([]*vector.ParentHit{
		{MDID: mdID, Filename: "intro", Summary: "an intro video", Score: 0.7},
	}, nil)
	parentRepo.On("GetParent", mdID).Return(&transcript.ParentRecord{
		MDID: mdID, Filename: "intro", Content: "full transcript text",
	}, nil)

	retriever := NewRetriever(searcher, parentRepo, embedder)
	result, err := retriever.Retrieve(context.Background(), "intro", ModeWhole, 0)
	require.NoError(t, err)

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "intro", result.Blocks[0].Citation)
	assert.Equal(t, "full transcript text", result.Blocks[0].Content)
}

func TestRetriever_NoResults(t *testing.T) {
	searcher := new(MockVectorSearcher)
	embedder := new(MockQueryEmbedder)
	parentRepo := new(MockParentRepository)

	embedder.On("EmbedText", mock.Anything).Return([]float32{0.1}, nil)
	searcher.On("SearchChunks", mock.Anything, mock.Anything, 5).Return([]*vector.ChunkHit{}, nil)

	retriever := NewRetriever(searcher, parentRepo, embedder)
	_, err := retriever.Retrieve(context.Background(), "nothing", ModeChunked, 5)
	assert.ErrorIs(t, err, transcript.ErrNoResults)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("whole")
	require.NoError(t, err)
	assert.Equal(t, ModeWhole, mode)

	mode, err = ParseMode("chunked")
	require.NoError(t, err)
	assert.Equal(t, ModeChunked, mode)

	_, err = ParseMode("hybrid")
	assert.Error(t, err)
}
