package textclean

import (
	"regexp"
	"strings"
)

// 口语填充词与对话式开头的清理规则
var (
	// 独立出现的口语填充词
	verbalFillersRe = regexp.MustCompile(`(?i)\b(uh|um|basically|actually|sort of|kind of|you know|i mean|et cetera)\b`)
	// 段首的 "so"（保留换行，排除 so that / so as）
	soParaRe = regexp.MustCompile(`(?i)(\n+)[ \t]*so\b([ \t]+)`)
	// 句首的 "so"（标点之后）
	soStartRe = regexp.MustCompile(`(?i)([.!?])\s+so\b\s+`)
	// 段首的 "and"
	andParaRe = regexp.MustCompile(`(?i)(\n+)[ \t]*and\b\s*`)
	// 句首的 "and"
	andStartRe = regexp.MustCompile(`(?i)([.!?])\s+and\b\s*`)
	// 对话式开头组合，如 "So you basically just"
	conversationalRe = regexp.MustCompile(`(?i)\b(so|and|then|now)\b\s+(you|we|i)\s+(basically|actually|just)\b\s*`)

	// 标点修复
	repeatedPunctRe   = regexp.MustCompile(`([.!?,])[ \t]*[.!?,]+`)
	spacesRe          = regexp.MustCompile(`[ \t]+`)
	excessNewlinesRe  = regexp.MustCompile(`\n{3,}`)
	paraStrayPunctRe  = regexp.MustCompile(`(\n\n+)[ \t]*[.,?!]+[ \t]*`)
)

// Clean 深度清洗转写文本，面向 LLM 上下文可读性
// 去除口语填充词、对话式开头和冗余标点，压缩空白但保留段落结构
func Clean(text string) string {
	text = conversationalRe.ReplaceAllString(text, "")
	text = verbalFillersRe.ReplaceAllString(text, " ")

	text = soParaRe.ReplaceAllString(text, "$1")
	text = andParaRe.ReplaceAllString(text, "$1")
	text = soStartRe.ReplaceAllString(text, "$1 ")
	text = andStartRe.ReplaceAllString(text, "$1 ")

	text = repeatedPunctRe.ReplaceAllString(text, "$1")
	text = paraStrayPunctRe.ReplaceAllString(text, "$1")

	text = spacesRe.ReplaceAllString(text, " ")
	text = excessNewlinesRe.ReplaceAllString(text, "\n\n")

	// 逐段 strip，丢弃空段落
	paragraphs := strings.Split(text, "\n\n")
	blocks := make([]string, 0, len(paragraphs))
	for _, para := range paragraphs {
		if p := strings.TrimSpace(para); p != "" {
			blocks = append(blocks, p)
		}
	}

	return strings.Join(blocks, "\n\n")
}
