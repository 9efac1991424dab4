package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKeywords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "逗号分隔",
			raw:  "go, testing,databases",
			want: "go, testing, databases",
		},
		{
			name: "换行分隔带列表前缀",
			raw:  "- go\n- testing\n- databases",
			want: "go, testing, databases",
		},
		{
			name: "数字编号前缀",
			raw:  "1. go\n2) testing",
			want: "go, testing",
		},
		{
			name: "空项被丢弃",
			raw:  "go,, ,testing",
			want: "go, testing",
		},
		{
			name: "空输入",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKeywords(tt.raw))
		})
	}
}
