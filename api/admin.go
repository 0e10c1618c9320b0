package api

import (
	"context"
	"net/http"

	"github.com/MrEthical07/blogClient/gateway"
	"github.com/MrEthical07/blogClient/roles"
)

// Status labels for moderated content.
const (
	StatusNormal  = "normal"
	StatusHidden  = "hidden"
	StatusDeleted = "deleted"
)

// statusOf derives a moderation label. Deletion wins over hiding.
func statusOf(deleted, hidden bool) string {
	switch {
	case deleted:
		return StatusDeleted
	case hidden:
		return StatusHidden
	default:
		return StatusNormal
	}
}

type DashboardStats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalPosts    int `json:"totalPosts"`
	TotalComments int `json:"totalComments"`
	TodayVisits   int `json:"todayVisits"`
}

type AdminUser struct {
	ID        int64     `json:"userId"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt string    `json:"createdAt,omitempty"`
	Roles     roles.Set `json:"roles"`
	Disabled  bool      `json:"disabled"`
}

// IsAdmin reports whether the listed user holds the admin role.
func (u AdminUser) IsAdmin() bool { return u.Roles.IsAdmin() }

type AdminPost struct {
	ID           int64  `json:"postId"`
	Title        string `json:"title"`
	AuthorName   string `json:"authorName"`
	CreatedAt    string `json:"createdAt,omitempty"`
	CommentCount int    `json:"commentCount"`
	Hidden       bool   `json:"isHidden"`
	Deleted      bool   `json:"isDeleted"`
}

func (p AdminPost) Status() string { return statusOf(p.Deleted, p.Hidden) }

type AdminComment struct {
	ID         int64  `json:"commentId"`
	PostID     int64  `json:"postId"`
	PostTitle  string `json:"postTitle,omitempty"`
	Content    string `json:"content"`
	AuthorName string `json:"authorName"`
	CreatedAt  string `json:"createdAt,omitempty"`
	Hidden     bool   `json:"isHidden"`
	Deleted    bool   `json:"isDeleted"`
}

func (c AdminComment) Status() string { return statusOf(c.Deleted, c.Hidden) }

// Admin wraps the /admin endpoints. The backend rejects non-admins with 403,
// which the gateway reports as a permission notification.
type Admin struct {
	d Doer
}

func (a *Admin) Stats(ctx context.Context) (DashboardStats, error) {
	return call[DashboardStats](ctx, a.d, http.MethodGet, "/admin/dashboard/stats", nil, gateway.Options{})
}

func (a *Admin) Users(ctx context.Context, q PageQuery) (Page[AdminUser], error) {
	return call[Page[AdminUser]](ctx, a.d, http.MethodGet, "/admin/users", nil, gateway.Options{Query: q.values("size")})
}

func (a *Admin) Posts(ctx context.Context, q PageQuery) (Page[AdminPost], error) {
	return call[Page[AdminPost]](ctx, a.d, http.MethodGet, "/admin/posts", nil, gateway.Options{Query: q.values("size")})
}

func (a *Admin) Comments(ctx context.Context, q PageQuery) (Page[AdminComment], error) {
	return call[Page[AdminComment]](ctx, a.d, http.MethodGet, "/admin/comments", nil, gateway.Options{Query: q.values("size")})
}

func (a *Admin) Promote(ctx context.Context, userID int64) error {
	return exec(ctx, a.d, http.MethodPost, idPath("/admin/users/%d/promote", userID), nil)
}

func (a *Admin) Demote(ctx context.Context, userID int64) error {
	return exec(ctx, a.d, http.MethodPost, idPath("/admin/users/%d/demote", userID), nil)
}

func (a *Admin) Disable(ctx context.Context, userID int64) error {
	return exec(ctx, a.d, http.MethodPost, idPath("/admin/users/%d/disable", userID), nil)
}

func (a *Admin) Enable(ctx context.Context, userID int64) error {
	return exec(ctx, a.d, http.MethodPost, idPath("/admin/users/%d/enable", userID), nil)
}

func (a *Admin) DeletePost(ctx context.Context, id int64) error {
	return exec(ctx, a.d, http.MethodDelete, idPath("/admin/posts/%d", id), nil)
}

func (a *Admin) HidePost(ctx context.Context, id int64) error {
	return exec(ctx, a.d, http.MethodPost, idPath("/admin/posts/%d/hide", id), nil)
}

func (a *Admin) ShowPost(ctx context.Context, id int64) error {
	return exec(ctx, a.d, http.MethodPost, idPath("/admin/posts/%d/show", id), nil)
}

func (a *Admin) DeleteComment(ctx context.Context, id int64) error {
	return exec(ctx, a.d, http.MethodDelete, idPath("/admin/comments/%d", id), nil)
}

func (a *Admin) HideComment(ctx context.Context, id int64) error {
	return exec(ctx, a.d, http.MethodPost, idPath("/admin/comments/%d/hide", id), nil)
}

func (a *Admin) ShowComment(ctx context.Context, id int64) error {
	return exec(ctx, a.d, http.MethodPost, idPath("/admin/comments/%d/show", id), nil)
}
