package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appQuery "github.com/tubesage/backend/internal/application/query"
	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/llm"
	"github.com/tubesage/backend/internal/infrastructure/storage"
	"github.com/tubesage/backend/internal/infrastructure/vector"
)

// stubSearcher 返回固定命中的向量库替身
type stubSearcher struct {
	chunkHits []*vector.ChunkHit
}

func (s *stubSearcher) SearchParents(ctx context.Context, queryVector []float32, limit int) ([]*vector.ParentHit, error) {
	return nil, nil
}

func (s *stubSearcher) SearchChunks(ctx context.Context, queryVector []float32, limit int) ([]*vector.ChunkHit, error) {
	return s.chunkHits, nil
}

// stubEmbedder 返回零向量的 Embedding 替身
type stubEmbedder struct{}

func (s *stubEmbedder) EmbedText(text string) ([]float32, error) {
	return make([]float32, 4), nil
}

// fakeLLMServer 返回固定 JSON 回答的 Chat Completions 替身
func fakeLLMServer(t *testing.T, answer, citation string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))

		content, err := json.Marshal(map[string]string{
			"answer":   answer,
			"citation": citation,
		})
		require.NoError(t, err)

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": string(content)}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func setupQueryRouter(t *testing.T, searcher appQuery.VectorSearcher, llmURL string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.InitDatabase(db))

	parentRepo := storage.NewParentRepository(db)
	require.NoError(t, parentRepo.UpsertParent(&transcript.ParentRecord{
		MDID:              transcript.DocumentID("video_a"),
		Filepath:          "/corpus/video_a.md",
		Filename:          "video_a",
		Content:           "full transcript of video_a",
		Summary:           "summary of video_a",
		Keywords:          "go, testing",
		EmbeddingModel:    "text-embedding-3-small",
		EmbeddingProvider: "openai",
		EmbeddingDim:      4,
	}))

	retriever := appQuery.NewRetriever(searcher, parentRepo, &stubEmbedder{})
	answerService := appQuery.NewAnswerService(retriever, llm.NewClient(llmURL, "test-key", "test-model"))
	handler := NewQueryHandler(answerService)

	router := gin.New()
	router.POST("/api/v1/rag/query", handler.Query)
	return router
}

func postQuery(t *testing.T, router *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rag/query", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestQueryHandler_Query(t *testing.T) {
	llmServer := fakeLLMServer(t, "The video covers Go testing.", "video_a (Chunk 0)")
	defer llmServer.Close()

	searcher := &stubSearcher{
		chunkHits: []*vector.ChunkHit{
			{MDID: transcript.DocumentID("video_a"), ChunkID: 0, Content: "go testing basics", Score: 0.9},
		},
	}
	router := setupQueryRouter(t, searcher, llmServer.URL)

	w := postQuery(t, router, `{"query": "what is covered?", "mode": "chunked", "top_k": 3}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int            `json:"code"`
		Data *QueryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	require.NotNil(t, body.Data)
	assert.Equal(t, "The video covers Go testing.", body.Data.Answer)
	assert.Equal(t, "video_a (Chunk 0)", body.Data.Citation)
}

func TestQueryHandler_NoResults(t *testing.T) {
	llmServer := fakeLLMServer(t, "unused", "unused")
	defer llmServer.Close()

	router := setupQueryRouter(t, &stubSearcher{}, llmServer.URL)

	w := postQuery(t, router, `{"query": "anything"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int            `json:"code"`
		Data *QueryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Empty(t, body.Data.Citation)
	assert.Contains(t, body.Data.Answer, "No relevant transcript content")
}

func TestQueryHandler_InvalidMode(t *testing.T) {
	llmServer := fakeLLMServer(t, "unused", "unused")
	defer llmServer.Close()

	router := setupQueryRouter(t, &stubSearcher{}, llmServer.URL)

	w := postQuery(t, router, `{"query": "anything", "mode": "bogus"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQueryHandler_MissingQuery(t *testing.T) {
	llmServer := fakeLLMServer(t, "unused", "unused")
	defer llmServer.Close()

	router := setupQueryRouter(t, &stubSearcher{}, llmServer.URL)

	w := postQuery(t, router, `{"mode": "chunked"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
