package blogClient

import "context"

type currentPathContextKey struct{}

// WithCurrentPath attaches the page the user is on to ctx. When a request
// made with ctx ends the session, the login redirect carries the path so the
// user returns there after logging in.
func WithCurrentPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, currentPathContextKey{}, path)
}

func currentPathFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	path, _ := ctx.Value(currentPathContextKey{}).(string)
	return path
}
