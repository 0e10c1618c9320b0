package api

import (
	"context"
	"net/http"

	"github.com/MrEthical07/blogClient/gateway"
)

// Notification is a comment or favorite notice addressed to the user.
type Notification struct {
	ID          int64  `json:"messageId"`
	UserID      int64  `json:"userId"`
	PostID      int64  `json:"postId"`
	CommentID   int64  `json:"commentId,omitempty"`
	Type        string `json:"type"`
	Content     string `json:"content"`
	Read        bool   `json:"isRead"`
	CreatedAt   string `json:"createdAt,omitempty"`
	SenderName  string `json:"senderName,omitempty"`
	SenderEmail string `json:"senderEmail,omitempty"`
}

type Messages struct {
	d Doer
}

func (m *Messages) List(ctx context.Context) ([]Notification, error) {
	return call[[]Notification](ctx, m.d, http.MethodGet, "/messages", nil, gateway.Options{})
}

// UnreadCount is quiet: a failed badge refresh is not worth a notification.
func (m *Messages) UnreadCount(ctx context.Context) (int, error) {
	return call[int](ctx, m.d, http.MethodGet, "/messages/unread/count", nil, gateway.Options{Quiet: true})
}

func (m *Messages) MarkRead(ctx context.Context, id int64) error {
	return exec(ctx, m.d, http.MethodPut, idPath("/messages/%d/read", id), nil)
}

func (m *Messages) MarkAllRead(ctx context.Context) error {
	return exec(ctx, m.d, http.MethodPut, "/messages/read-all", nil)
}

func (m *Messages) Delete(ctx context.Context, id int64) error {
	return exec(ctx, m.d, http.MethodDelete, idPath("/messages/%d", id), nil)
}
