package serpblock

import "context"

// MessageType identifies a request sent to the blocklist store.
type MessageType string

// Message types understood by the blocklist store.
const (
	MessageGetBlocklist        MessageType = "getBlocklist"
	MessageAddToBlocklist      MessageType = "addToBlocklist"
	MessageAddBulkToBlocklist  MessageType = "addBulkToBlocklist"
	MessageDeleteFromBlocklist MessageType = "deleteFromBlocklist"

	// MessageRefresh asks page matchers to reload the blocklist. It carries no
	// payload and expects no response.
	MessageRefresh MessageType = "refresh"
)

// Request is a message sent to the blocklist store.
type Request struct {
	// ID correlates a response with its request. Optional.
	ID string `json:"id,omitempty"`

	Type     MessageType `json:"type"`
	Start    int         `json:"start,omitempty"`
	Num      int         `json:"num,omitempty"`
	Pattern  string      `json:"pattern,omitempty"`
	Patterns []string    `json:"patterns,omitempty"`
}

// Response is the store's answer to a Request. Only the fields of the
// request's message type are meaningful.
type Response struct {
	ID string `json:"id,omitempty"`

	// Success is 1 for successful mutations.
	Success int    `json:"success,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Count   int    `json:"count,omitempty"`

	Blocklist []string `json:"blocklist,omitempty"`
	Start     int      `json:"start,omitempty"`
	Num       int      `json:"num,omitempty"`
	Total     int      `json:"total,omitempty"`
	Revision  string   `json:"revision,omitempty"`
}

// MessageHandler answers blocklist messages. Refresh requests return a nil response.
type MessageHandler interface {
	HandleMessage(ctx context.Context, req *Request) (*Response, error)
}

// RefreshSubscriber delivers the refresh signals sent to a blocklist store
// by other processes.
type RefreshSubscriber interface {
	SubscribeRefresh(ctx context.Context, fn func()) error
}
