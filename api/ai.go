package api

import (
	"context"
	"net/http"

	"github.com/MrEthical07/blogClient/gateway"
)

type ChatMessage struct {
	ID        string `json:"id"`
	ChatID    int64  `json:"chatId,omitempty"`
	UserID    int64  `json:"userId,omitempty"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type ChatReply struct {
	ChatID    int64  `json:"chatId,omitempty"`
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type chatRequest struct {
	Content string `json:"content"`
	ChatID  int64  `json:"chatId,omitempty"`
}

type AI struct {
	d Doer
}

// Chat sends content to the assistant. chatID 0 starts a new conversation.
func (a *AI) Chat(ctx context.Context, chatID int64, content string) (ChatReply, error) {
	return call[ChatReply](ctx, a.d, http.MethodPost, "/ai/chat", chatRequest{Content: content, ChatID: chatID}, gateway.Options{})
}

func (a *AI) History(ctx context.Context) ([]ChatMessage, error) {
	return call[[]ChatMessage](ctx, a.d, http.MethodGet, "/ai/chat/history", nil, gateway.Options{})
}

func (a *AI) ClearHistory(ctx context.Context) error {
	return exec(ctx, a.d, http.MethodDelete, "/ai/chat/history", nil)
}
