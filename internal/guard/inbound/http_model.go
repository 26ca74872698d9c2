package inbound

type ChatMessageRequest struct {
	MessageID string `json:"message_id"`
	ChatID    string `json:"chat_id"`
	BuyerID   string `json:"buyer_id"`
	Text      string `json:"text"`
}

type ChatMessageResponse struct {
	Matched bool   `json:"matched"`
	Reply   string `json:"reply,omitempty"`
}

type RegistrationStateResponse struct {
	Step      string           `json:"step,omitempty"`
	Message   string           `json:"message"`
	Done      bool             `json:"done,omitempty"`
	Cancelled bool             `json:"cancelled,omitempty"`
	Account   *AccountResponse `json:"account,omitempty"`
}

type RegistrationAdvanceRequest struct {
	Text string `json:"text"`
}

type RegistrationCancelResponse struct{}

func (RegistrationCancelResponse) Message() string {
	return "Registration cancelled."
}

type AccountResponse struct {
	ID           int64  `json:"id,string"`
	Name         string `json:"name"`
	Trigger      string `json:"trigger"`
	LimitText    string `json:"limit_text"`
	MaskedSecret string `json:"masked_secret"`
}

type AccountListResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

type AccountDeleteResponse struct {
	Name string `json:"name"`
}

func (AccountDeleteResponse) Message() string {
	return "Account deleted."
}

type LogEntryResponse struct {
	TS      int64  `json:"ts"`
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Trigger string `json:"trigger"`
	BuyerID string `json:"buyer_id"`
	Msg     string `json:"msg"`
}

type LogListResponse struct {
	Entries    []LogEntryResponse `json:"entries"`
	Page       int32              `json:"page"`
	TotalPages int32              `json:"total_pages"`
}

type TemplateResponse struct {
	Template  string `json:"template"`
	IsDefault bool   `json:"is_default,omitempty"`
}

type TemplateUpdateRequest struct {
	Template string `json:"template"`
}

type TemplateUpdateResponse struct{}

func (TemplateUpdateResponse) Message() string {
	return "Template updated."
}
