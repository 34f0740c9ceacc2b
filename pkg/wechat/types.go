package wechat

// MessageType is the webhook msgtype
type MessageType string

const (
	MessageTypeText       MessageType = "text"
	MessageTypeMarkdown   MessageType = "markdown"
	MessageTypeMarkdownV2 MessageType = "markdown_v2" // supports tables
)

// WebhookMessage is the webhook request body
type WebhookMessage struct {
	MsgType    MessageType  `json:"msgtype"`
	Text       *TextMsg     `json:"text,omitempty"`
	Markdown   *MarkdownMsg `json:"markdown,omitempty"`
	MarkdownV2 *MarkdownMsg `json:"markdown_v2,omitempty"`
}

// TextMsg is a text payload
type TextMsg struct {
	Content             string   `json:"content"`
	MentionedList       []string `json:"mentioned_list,omitempty"`        // user ids
	MentionedMobileList []string `json:"mentioned_mobile_list,omitempty"` // phone numbers
}

// MarkdownMsg is a markdown payload
type MarkdownMsg struct {
	Content string `json:"content"`
}

// WebhookResponse is the webhook reply
type WebhookResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// IsSuccess reports errcode 0
func (r *WebhookResponse) IsSuccess() bool {
	return r.ErrCode == 0
}
