package core

const (
	RecallName          = "Recall"
	RecallUserAgent     = "Recall-Assistant/0.1"
	RecallRepositoryURL = "https://github.com/sandevgo/recall"
	RecallVersion       = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
