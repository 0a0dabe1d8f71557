package models

const (
	// SpeakerHost 主持人标签
	SpeakerHost = "Speaker 1"
	// SpeakerGuest 嘉宾标签
	SpeakerGuest = "Speaker 2"
)

// DialogueLine 表示对话脚本中的一句
type DialogueLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// DialogueScript 有序的对话脚本，顺序即音频拼接顺序
type DialogueScript []DialogueLine

// AudioSegment 表示一句对话合成后的音频片段
type AudioSegment struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Speaker   string `json:"speaker"`
	Voice     string `json:"voice"`
	AudioData []byte `json:"-"`
}
