package podcast

import (
	"errors"
	"fmt"
	"strings"

	"hn-digest/internal/models"
)

// ErrEmptyScript 模型输出里没有任何对话
var ErrEmptyScript = errors.New("对话脚本为空")

// ScriptError 对话脚本某一行不符合 "Speaker N: 内容" 格式
type ScriptError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("对话脚本第 %d 行%s: %q", e.Line, e.Reason, e.Text)
}

// ParseScript 解析逐行的对话脚本；空行和包裹的代码块标记会被忽略
func ParseScript(text string) (models.DialogueScript, error) {
	var script models.DialogueScript

	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}

		speaker, utterance, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &ScriptError{Line: i + 1, Text: line, Reason: "缺少说话人"}
		}
		speaker = strings.TrimSpace(speaker)
		if speaker != models.SpeakerHost && speaker != models.SpeakerGuest {
			return nil, &ScriptError{Line: i + 1, Text: line, Reason: "说话人无效"}
		}
		utterance = strings.TrimSpace(utterance)
		if utterance == "" {
			return nil, &ScriptError{Line: i + 1, Text: line, Reason: "内容为空"}
		}

		script = append(script, models.DialogueLine{Speaker: speaker, Text: utterance})
	}

	if len(script) == 0 {
		return nil, ErrEmptyScript
	}
	return script, nil
}
