package api

import (
	"context"
	"net/http"

	"github.com/MrEthical07/blogClient/gateway"
)

type Favorite struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"postId"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type Favorites struct {
	d Doer
}

func (f *Favorites) List(ctx context.Context) ([]Favorite, error) {
	return call[[]Favorite](ctx, f.d, http.MethodGet, "/users/favorites", nil, gateway.Options{})
}

func (f *Favorites) Add(ctx context.Context, postID int64) error {
	return exec(ctx, f.d, http.MethodPost, idPath("/favorites/add/%d", postID), nil)
}

func (f *Favorites) Remove(ctx context.Context, postID int64) error {
	return exec(ctx, f.d, http.MethodDelete, idPath("/posts/%d/favorite", postID), nil)
}

// Check reports whether the current user has favorited postID.
func (f *Favorites) Check(ctx context.Context, postID int64) (bool, error) {
	return call[bool](ctx, f.d, http.MethodGet, idPath("/favorites/check/%d", postID), nil, gateway.Options{})
}
