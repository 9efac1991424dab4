package vector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qdrant/go-client/qdrant"

	"github.com/tubesage/backend/internal/domain/transcript"
	"github.com/tubesage/backend/internal/infrastructure/log"
)

// Store 双粒度向量存储
// 父文档点写入 parent_videos，片段点写入 video_chunks
// 点 ID 由 md_id / chunk_id 确定性派生，重复写入即幂等覆盖
type Store struct {
	manager *QdrantManager
	logger  *slog.Logger
}

// NewStore 创建向量存储
func NewStore(manager *QdrantManager) *Store {
	return &Store{
		manager: manager,
		logger:  log.NewModuleLogger("vector", "store"),
	}
}

// ParentHit 父文档检索命中
type ParentHit struct {
	MDID     string
	Filename string
	Summary  string
	Keywords string
	Score    float32
}

// ChunkHit 片段检索命中
type ChunkHit struct {
	MDID       string
	ChunkID    int
	Content    string
	TokenCount int
	Score      float32
}

// UpsertParentPoint 写入父文档点
func (s *Store) UpsertParentPoint(ctx context.Context, record *transcript.ParentRecord, vector []float32) error {
	client := s.manager.GetClient()
	if client == nil {
		return fmt.Errorf("qdrant client not initialized")
	}

	pointID := transcript.ParentPointID(record.MDID)

	_, err := client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: ParentCollection,
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(pointID),
			Vectors: qdrant.NewVectors(vector...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"md_id":    record.MDID,
				"filename": record.Filename,
				"summary":  record.Summary,
				"keywords": record.Keywords,
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert parent point: %w", err)
	}

	return nil
}

// UpsertChunkPoints 批量写入片段点
func (s *Store) UpsertChunkPoints(ctx context.Context, records []*transcript.ChunkRecord, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("records/vectors length mismatch: %d vs %d", len(records), len(vectors))
	}
	if len(records) == 0 {
		return nil
	}

	client := s.manager.GetClient()
	if client == nil {
		return fmt.Errorf("qdrant client not initialized")
	}

	points := make([]*qdrant.PointStruct, len(records))
	for i, record := range records {
		pointID := transcript.ChunkPointID(record.MDID, record.ChunkID)

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]interface{}{
				"md_id":       record.MDID,
				"chunk_id":    int64(record.ChunkID),
				"content":     record.CleanedContent,
				"token_count": int64(record.TokenCount),
			}),
		}
	}

	_, err := client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: ChunkCollection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert chunk points: %w", err)
	}

	return nil
}

// DeleteStaleChunkPoints 删除片段号超出新分块数的残留点
// 文档重摄取后片段变少时调用，保证旧点不再参与检索
func (s *Store) DeleteStaleChunkPoints(ctx context.Context, mdID string, newChunkCount int) error {
	client := s.manager.GetClient()
	if client == nil {
		return fmt.Errorf("qdrant client not initialized")
	}

	gte := float64(newChunkCount)
	_, err := client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: ChunkCollection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("md_id", mdID),
						{
							ConditionOneOf: &qdrant.Condition_Field{
								Field: &qdrant.FieldCondition{
									Key: "chunk_id",
									Range: &qdrant.Range{
										Gte: &gte,
									},
								},
							},
						},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete stale chunk points: %w", err)
	}

	return nil
}

// DeleteDocumentPoints 删除文档的父点和全部片段点
func (s *Store) DeleteDocumentPoints(ctx context.Context, mdID string) error {
	client := s.manager.GetClient()
	if client == nil {
		return fmt.Errorf("qdrant client not initialized")
	}

	pointID := transcript.ParentPointID(mdID)

	_, err := client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: ParentCollection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{qdrant.NewID(pointID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete parent point: %w", err)
	}

	_, err = client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: ChunkCollection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{
						qdrant.NewMatch("md_id", mdID),
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete chunk points: %w", err)
	}

	return nil
}

// SearchParents 在父文档集合中检索
func (s *Store) SearchParents(ctx context.Context, queryVector []float32, limit int) ([]*ParentHit, error) {
	client := s.manager.GetClient()
	if client == nil {
		return nil, fmt.Errorf("qdrant client not initialized")
	}

	limitU := uint64(limit)
	searchResp, err := client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ParentCollection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          &limitU,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query parent collection: %w", err)
	}

	hits := make([]*ParentHit, 0, len(searchResp))
	for _, hit := range searchResp {
		payload := hit.GetPayload()
		if payload == nil {
			continue
		}

		parent := &ParentHit{Score: hit.GetScore()}
		if val, ok := payload["md_id"]; ok {
			parent.MDID = extractStringValue(val)
		}
		if val, ok := payload["filename"]; ok {
			parent.Filename = extractStringValue(val)
		}
		if val, ok := payload["summary"]; ok {
			parent.Summary = extractStringValue(val)
		}
		if val, ok := payload["keywords"]; ok {
			parent.Keywords = extractStringValue(val)
		}
		hits = append(hits, parent)
	}

	return hits, nil
}

// SearchChunks 在片段集合中检索
func (s *Store) SearchChunks(ctx context.Context, queryVector []float32, limit int) ([]*ChunkHit, error) {
	client := s.manager.GetClient()
	if client == nil {
		return nil, fmt.Errorf("qdrant client not initialized")
	}

	limitU := uint64(limit)
	searchResp, err := client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ChunkCollection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          &limitU,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk collection: %w", err)
	}

	hits := make([]*ChunkHit, 0, len(searchResp))
	for _, hit := range searchResp {
		payload := hit.GetPayload()
		if payload == nil {
			continue
		}

		chunk := &ChunkHit{Score: hit.GetScore()}
		if val, ok := payload["md_id"]; ok {
			chunk.MDID = extractStringValue(val)
		}
		if val, ok := payload["chunk_id"]; ok {
			chunk.ChunkID = int(extractIntValue(val))
		}
		if val, ok := payload["content"]; ok {
			chunk.Content = extractStringValue(val)
		}
		if val, ok := payload["token_count"]; ok {
			chunk.TokenCount = int(extractIntValue(val))
		}
		hits = append(hits, chunk)
	}

	return hits, nil
}

// extractStringValue 从 qdrant.Value 提取字符串值
func extractStringValue(val *qdrant.Value) string {
	if val == nil {
		return ""
	}
	return val.GetStringValue()
}

// extractIntValue 从 qdrant.Value 提取整数值
func extractIntValue(val *qdrant.Value) int64 {
	if val == nil {
		return 0
	}
	if intVal := val.GetIntegerValue(); intVal != 0 {
		return intVal
	}
	if dblVal := val.GetDoubleValue(); dblVal != 0 {
		return int64(dblVal)
	}
	return 0
}
