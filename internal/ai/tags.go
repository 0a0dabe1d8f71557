package ai

import (
	"regexp"
	"strings"
	"sync"
)

// tagPatterns 每个标签编译一次的正则
type tagPatterns struct {
	tagged *regexp.Regexp
	fenced *regexp.Regexp
}

var patternCache sync.Map // tag -> *tagPatterns

func patternsFor(tag string) *tagPatterns {
	if p, ok := patternCache.Load(tag); ok {
		return p.(*tagPatterns)
	}
	quoted := regexp.QuoteMeta(tag)
	p := &tagPatterns{
		tagged: regexp.MustCompile(`(?s)<` + quoted + `>(.*?)</` + quoted + `>`),
		fenced: regexp.MustCompile("(?s)```" + quoted + `\s*(.*?)` + "```"),
	}
	actual, _ := patternCache.LoadOrStore(tag, p)
	return actual.(*tagPatterns)
}

// ExtractTagged 从模型输出中取出 <tag>...</tag> 的内容；
// 找不到时尝试 ```tag ... ``` 代码块；都没有则返回去掉首尾空白的原文
func ExtractTagged(text, tag string) string {
	if text == "" {
		return ""
	}

	p := patternsFor(tag)
	if m := p.tagged.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := p.fenced.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	return strings.TrimSpace(text)
}

// HasTag 判断模型输出里是否存在完整的 <tag>...</tag>
func HasTag(text, tag string) bool {
	return strings.Contains(text, "<"+tag+">") && strings.Contains(text, "</"+tag+">")
}
