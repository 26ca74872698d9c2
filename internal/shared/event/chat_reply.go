package event

const ChatReplyDestination string = "guard_chat_reply"

// ChatReply is the bot's answer for a chat, published for the transport
// adapter that talks to the marketplace.
type ChatReply struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}
