package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MrEthical07/blogClient/gateway"
)

// Author is the embedded post or comment author.
type Author struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

type Post struct {
	ID        int64   `json:"postId"`
	UserID    int64   `json:"userId"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Summary   string  `json:"summary,omitempty"`
	Tags      string  `json:"tags,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
	User      *Author `json:"user,omitempty"`
}

// TagList splits the comma separated Tags field.
func (p Post) TagList() []string {
	var out []string
	for _, t := range strings.Split(p.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// PostInput is the body of create and update.
type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Summary string `json:"summary,omitempty"`
	Tags    string `json:"tags,omitempty"`
}

type Posts struct {
	d Doer
}

// List returns one page of posts. Tag filters by a single tag.
func (p *Posts) List(ctx context.Context, q PageQuery, tag string) (Page[Post], error) {
	v := q.values("pageSize")
	if tag != "" {
		v.Set("tag", tag)
	}
	return call[Page[Post]](ctx, p.d, http.MethodGet, "/posts", nil, gateway.Options{Query: v})
}

func (p *Posts) Get(ctx context.Context, id int64) (Post, error) {
	return call[Post](ctx, p.d, http.MethodGet, idPath("/posts/%d", id), nil, gateway.Options{})
}

func (p *Posts) Create(ctx context.Context, in PostInput) (Post, error) {
	return call[Post](ctx, p.d, http.MethodPost, "/posts", in, gateway.Options{})
}

func (p *Posts) Update(ctx context.Context, id int64, in PostInput) (Post, error) {
	return call[Post](ctx, p.d, http.MethodPut, idPath("/posts/%d", id), in, gateway.Options{})
}

func (p *Posts) Delete(ctx context.Context, id int64) error {
	return exec(ctx, p.d, http.MethodDelete, idPath("/posts/%d", id), nil)
}

func (p *Posts) Tags(ctx context.Context) ([]string, error) {
	return call[[]string](ctx, p.d, http.MethodGet, "/posts/tags", nil, gateway.Options{})
}

// ByTags returns posts carrying any of tags.
func (p *Posts) ByTags(ctx context.Context, tags []string, page, size int) ([]Post, error) {
	v := url.Values{}
	v.Set("tags", strings.Join(tags, ","))
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if size > 0 {
		v.Set("pageSize", strconv.Itoa(size))
	}
	return call[[]Post](ctx, p.d, http.MethodGet, "/posts/bytags", nil, gateway.Options{Query: v})
}
