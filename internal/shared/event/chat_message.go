package event

const ChatMessageDestination string = "guard_chat_message"
const ChatMessageConsumerGuard string = "guard_chat_message_guard"

// ChatMessage is an inbound marketplace chat message routed through the
// broker. MessageID deduplicates broker redeliveries.
type ChatMessage struct {
	MessageID string `json:"message_id"`
	ChatID    string `json:"chat_id"`
	BuyerID   string `json:"buyer_id"`
	Text      string `json:"text"`
}
