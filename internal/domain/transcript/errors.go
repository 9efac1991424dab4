package transcript

import "errors"

// ErrNotFound 目标记录不存在
var ErrNotFound = errors.New("record not found")

// ErrNoResults 检索没有命中任何文档
// 调用方据此短路，避免用空上下文调用 LLM
var ErrNoResults = errors.New("no relevant documents found")
