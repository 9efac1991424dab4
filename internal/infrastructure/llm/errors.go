package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RateLimitError 提供方限流错误
// 该类错误可无限重试，区别于永久失败
type RateLimitError struct {
	StatusCode int
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by provider (status %d): %s", e.StatusCode, e.Message)
}

// PermanentError 提供方永久错误，重试无意义
type PermanentError struct {
	StatusCode int
	Message    string
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("provider request failed permanently (status %d): %s", e.StatusCode, e.Message)
}

// ClassifyHTTPError 按状态码和响应体分类提供方错误
// 429 以及配额类错误归为限流，其余归为永久错误
func ClassifyHTTPError(statusCode int, body string) error {
	if statusCode == http.StatusTooManyRequests {
		return &RateLimitError{StatusCode: statusCode, Message: body}
	}

	// 部分网关用 403/5xx 返回配额耗尽，按响应体中的标准错误码识别
	lower := strings.ToLower(body)
	if strings.Contains(lower, "resource_exhausted") ||
		strings.Contains(lower, "rate_limit_exceeded") ||
		strings.Contains(lower, "insufficient_quota") {
		return &RateLimitError{StatusCode: statusCode, Message: body}
	}

	return &PermanentError{StatusCode: statusCode, Message: body}
}

// IsRateLimited 判断错误链中是否包含限流错误
func IsRateLimited(err error) bool {
	var rle *RateLimitError
	return errors.As(err, &rle)
}
