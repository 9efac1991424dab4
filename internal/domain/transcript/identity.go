package transcript

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DocumentID 从文件名生成确定性文档标识
// 对文件名 stem（去除扩展名）做 MD5，内容无关：同名文件永远得到同一个 ID
func DocumentID(filename string) string {
	stem := FilenameStem(filename)
	sum := md5.Sum([]byte(stem))
	return hex.EncodeToString(sum[:])
}

// FilenameStem 去除文件扩展名
func FilenameStem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParentPointID 文档在向量库中的 point ID
// MD5 摘要恰好 16 字节，直接格式化为 UUID，保证 upsert 幂等
func ParentPointID(mdID string) string {
	raw, err := hex.DecodeString(mdID)
	if err != nil || len(raw) != 16 {
		// 非法 md_id 仍然给出确定性 ID
		sum := md5.Sum([]byte(mdID))
		raw = sum[:]
	}
	id, _ := uuid.FromBytes(raw)
	return id.String()
}

// ChunkPointID 片段在向量库中的 point ID
// 由 (md_id, chunk_id) 派生，重新分块时同下标片段会被原位替换
func ChunkPointID(mdID string, chunkID int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%d", mdID, chunkID)))
	id, _ := uuid.FromBytes(sum[:])
	return id.String()
}
