package embedding

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEmbeddingServer 按请求文本数量返回指定维度向量的假服务
func newEmbeddingServer(t *testing.T, dim int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req EmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := EmbeddingResponse{}
		resp.Data = make([]struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}, len(req.Input))
		for i := range req.Input {
			resp.Data[i].Embedding = make([]float32, dim)
			resp.Data[i].Index = i
		}

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_EmbedTexts(t *testing.T) {
	server := newEmbeddingServer(t, 4)
	client := NewClient(server.URL, "test-key", "test-model", "test", 4)

	vectors, err := client.EmbedTexts([]string{"first chunk", "second chunk"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], 4)
	assert.Len(t, vectors[1], 4)
}

func TestClient_EmbedTextsEmpty(t *testing.T) {
	client := NewClient("http://localhost:1", "test-key", "test-model", "test", 4)

	_, err := client.EmbedTexts(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestClient_EmbedTextsDimensionMismatch(t *testing.T) {
	// 服务端返回 8 维，客户端固定 4 维，必须报错而不是入库脏数据
	server := newEmbeddingServer(t, 8)
	client := NewClient(server.URL, "test-key", "test-model", "test", 4)

	_, err := client.EmbedTexts([]string{"a chunk"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestClient_EmbedText(t *testing.T) {
	server := newEmbeddingServer(t, 4)
	client := NewClient(server.URL, "test-key", "test-model", "test", 4)

	vector, err := client.EmbedText("a single chunk")
	require.NoError(t, err)
	assert.Len(t, vector, 4)
}
