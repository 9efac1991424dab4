package query

import (
	"sort"
	"strings"

	"github.com/tubesage/backend/internal/domain/transcript"
)

// CatalogService 语料目录服务
// 文档列表、关键词聚合和元数据查询都走 SQLite，不碰向量库
type CatalogService struct {
	parentRepo transcript.ParentRepository
}

// NewCatalogService 创建目录服务
func NewCatalogService(parentRepo transcript.ParentRepository) *CatalogService {
	return &CatalogService{parentRepo: parentRepo}
}

// ListDocuments 列出全部文档
func (s *CatalogService) ListDocuments() ([]*transcript.DocumentInfo, error) {
	parents, err := s.parentRepo.ListParents()
	if err != nil {
		return nil, err
	}

	docs := make([]*transcript.DocumentInfo, len(parents))
	for i, parent := range parents {
		docs[i] = &transcript.DocumentInfo{
			MDID:     parent.MDID,
			Filename: parent.Filename,
		}
	}

	return docs, nil
}

// ListKeywords 聚合全部文档的关键词
// 按出现次数降序，次数相同按关键词升序
func (s *CatalogService) ListKeywords() ([]*transcript.KeywordCount, error) {
	parents, err := s.parentRepo.ListParents()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, parent := range parents {
		for _, raw := range strings.Split(parent.Keywords, ",") {
			keyword := strings.TrimSpace(raw)
			if keyword != "" {
				counts[keyword]++
			}
		}
	}

	result := make([]*transcript.KeywordCount, 0, len(counts))
	for keyword, count := range counts {
		result = append(result, &transcript.KeywordCount{Keyword: keyword, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Keyword < result[j].Keyword
	})

	return result, nil
}

// GetMetadata 查询单个文档的摘要和关键词
func (s *CatalogService) GetMetadata(mdID string) (*transcript.VideoMetadata, error) {
	parent, err := s.parentRepo.GetParent(mdID)
	if err != nil {
		return nil, err
	}

	return &transcript.VideoMetadata{
		Summary:  parent.Summary,
		Keywords: parent.Keywords,
	}, nil
}
