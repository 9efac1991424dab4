package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appIngest "github.com/tubesage/backend/internal/application/ingest"
	"github.com/tubesage/backend/internal/infrastructure/checkpoint"
	"github.com/tubesage/backend/internal/infrastructure/config"
	"github.com/tubesage/backend/internal/infrastructure/storage"
)

func setupIngestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tmpDir := t.TempDir()

	cfg := config.NewConfig()
	cfg.Corpus.DataDir = filepath.Join(tmpDir, "corpus")
	require.NoError(t, os.MkdirAll(cfg.Corpus.DataDir, 0755))
	cfg.Ingest.CheckpointPath = filepath.Join(tmpDir, "checkpoint.json")

	db, err := storage.OpenDB(filepath.Join(tmpDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, storage.InitDatabase(db))

	checkpointStore, err := checkpoint.NewFileStore(cfg.Ingest.CheckpointPath)
	require.NoError(t, err)

	orchestrator := appIngest.NewOrchestrator(
		cfg,
		storage.NewParentRepository(db),
		storage.NewChunkRepository(db),
		checkpointStore,
		nil,
		nil,
		nil,
		nil,
		nil,
	)
	scheduler := appIngest.NewScheduler(orchestrator, 0)
	handler := NewIngestHandler(scheduler, orchestrator)

	router := gin.New()
	router.POST("/api/v1/ingest/trigger", handler.Trigger)
	router.GET("/api/v1/ingest/status", handler.Status)
	return router
}

func TestIngestHandler_Status(t *testing.T) {
	router := setupIngestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ingest/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int             `json:"code"`
		Data *StatusResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.False(t, body.Data.Running)
	assert.Equal(t, 0, body.Data.ParentCount)
	assert.Equal(t, 0, body.Data.ChunkCount)
	assert.Equal(t, 0, body.Data.TotalProcessed)
	assert.Nil(t, body.Data.LastError)
}

func TestIngestHandler_Trigger(t *testing.T) {
	router := setupIngestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/trigger", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Code int              `json:"code"`
		Data *TriggerResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.True(t, body.Data.Triggered)
}
