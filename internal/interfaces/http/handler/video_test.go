package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appQuery "github.com/tubesage/backend/internal/application/query"
	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/storage"
)

func setupVideoRouter(t *testing.T) (*gin.Engine, transcript.ParentRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.InitDatabase(db))

	parentRepo := storage.NewParentRepository(db)
	handler := NewVideoHandler(appQuery.NewCatalogService(parentRepo))

	router := gin.New()
	router.GET("/api/v1/videos", handler.List)
	router.GET("/api/v1/videos/:id/metadata", handler.Metadata)
	router.GET("/api/v1/keywords", handler.Keywords)

	return router, parentRepo
}

func seedParent(t *testing.T, repo transcript.ParentRepository, filename, keywords string) string {
	t.Helper()
	mdID := transcript.DocumentID(filename)
	require.NoError(t, repo.UpsertParent(&transcript.ParentRecord{
		MDID:              mdID,
		Filepath:          "/corpus/" + filename + ".md",
		Filename:          filename,
		Content:           "transcript content for " + filename,
		Summary:           "summary of " + filename,
		Keywords:          keywords,
		EmbeddingModel:    "text-embedding-3-small",
		EmbeddingProvider: "openai",
		EmbeddingDim:      768,
	}))
	return mdID
}

func TestVideoHandler_List(t *testing.T) {
	router, repo := setupVideoRouter(t)
	seedParent(t, repo, "video_b", "go, testing")
	seedParent(t, repo, "video_a", "go, databases")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int         `json:"code"`
		Data []*VideoDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Code)
	require.Len(t, body.Data, 2)
	// 按文件名升序
	assert.Equal(t, "video_a", body.Data[0].Filename)
	assert.Equal(t, "video_b", body.Data[1].Filename)
}

func TestVideoHandler_Keywords(t *testing.T) {
	router, repo := setupVideoRouter(t)
	seedParent(t, repo, "video_a", "go, testing")
	seedParent(t, repo, "video_b", "go, databases")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/keywords", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int           `json:"code"`
		Data []*KeywordDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 3)
	// 次数降序，次数相同按关键词升序
	assert.Equal(t, "go", body.Data[0].Keyword)
	assert.Equal(t, 2, body.Data[0].Count)
	assert.Equal(t, "databases", body.Data[1].Keyword)
	assert.Equal(t, "testing", body.Data[2].Keyword)
}

func TestVideoHandler_Metadata(t *testing.T) {
	router, repo := setupVideoRouter(t)
	mdID := seedParent(t, repo, "video_a", "go, testing")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/"+mdID+"/metadata", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int          `json:"code"`
		Data *MetadataDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, mdID, body.Data.MDID)
	assert.Equal(t, "summary of video_a", body.Data.Summary)
	assert.Equal(t, "go, testing", body.Data.Keywords)
}

func TestVideoHandler_MetadataNotFound(t *testing.T) {
	router, _ := setupVideoRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos/deadbeef/metadata", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
