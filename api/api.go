package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/MrEthical07/blogClient/gateway"
)

// Doer sends one backend request. *gateway.Gateway implements it.
type Doer interface {
	Send(ctx context.Context, method, path string, body any, opts gateway.Options) (*gateway.Response, error)
}

// Options configure a Client.
type Options struct {
	UserCacheSize int
	UserCacheTTL  time.Duration
}

// Client groups the endpoint families.
type Client struct {
	Posts     *Posts
	Comments  *Comments
	Favorites *Favorites
	Messages  *Messages
	Admin     *Admin
	AI        *AI
	Users     *Users
}

// New returns a Client over d.
func New(d Doer, opts Options) *Client {
	return &Client{
		Posts:     &Posts{d: d},
		Comments:  &Comments{d: d},
		Favorites: &Favorites{d: d},
		Messages:  &Messages{d: d},
		Admin:     &Admin{d: d},
		AI:        &AI{d: d},
		Users:     newUsers(d, opts.UserCacheSize, opts.UserCacheTTL),
	}
}

// Page is a paginated list.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// PageQuery selects a page. Zero values use backend defaults.
type PageQuery struct {
	Page    int
	Size    int
	Keyword string
}

func (q PageQuery) values(sizeKey string) url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		v.Set(sizeKey, strconv.Itoa(q.Size))
	}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	return v
}

func call[T any](ctx context.Context, d Doer, method, path string, body any, opts gateway.Options) (T, error) {
	var out T
	resp, err := d.Send(ctx, method, path, body, opts)
	if err != nil {
		return out, err
	}
	if err = resp.Decode(&out); err != nil {
		return out, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return out, nil
}

func exec(ctx context.Context, d Doer, method, path string, body any) error {
	_, err := d.Send(ctx, method, path, body, gateway.Options{})
	return err
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
