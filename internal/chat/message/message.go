// Package message defines the chat record shared by the history, the wire protocol and clients.
package message

// Message - immutable chat record.
// ID is assigned by history at insertion time: the first message has ID 0, every next one ID+1.
type Message struct {
	ID      uint64 `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}
