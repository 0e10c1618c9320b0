package api

import (
	"context"
	"net/http"

	"github.com/MrEthical07/blogClient/gateway"
)

type Comment struct {
	ID        int64   `json:"commentId"`
	PostID    int64   `json:"postId"`
	UserID    int64   `json:"userId"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"createdAt,omitempty"`
	User      *Author `json:"user,omitempty"`
}

type Comments struct {
	d Doer
}

// ForPost lists the comments of a post.
func (c *Comments) ForPost(ctx context.Context, postID int64) ([]Comment, error) {
	return call[[]Comment](ctx, c.d, http.MethodGet, idPath("/posts/%d/comments", postID), nil, gateway.Options{})
}

// Add comments on a post as the current user.
func (c *Comments) Add(ctx context.Context, postID int64, content string) (Comment, error) {
	body := map[string]string{"content": content}
	return call[Comment](ctx, c.d, http.MethodPost, idPath("/posts/%d/comments", postID), body, gateway.Options{})
}

// Mine lists the current user's comments.
func (c *Comments) Mine(ctx context.Context) ([]Comment, error) {
	return call[[]Comment](ctx, c.d, http.MethodGet, "/comments/user", nil, gateway.Options{})
}

func (c *Comments) Delete(ctx context.Context, id int64) error {
	return exec(ctx, c.d, http.MethodDelete, idPath("/comments/%d", id), nil)
}
