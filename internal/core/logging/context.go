package logging

import "context"

type contextKey string

const (
	userKey      contextKey = "user"
	operationKey contextKey = "operation"
)

// WithUser adds the dashboard user's email to the context.
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userKey, email)
}

// WithOperation tags the context with the name of the dashboard operation
// in flight (load, swap, set-status, goal-status).
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, operationKey, op)
}

// GetUser returns the user email from the context, or "".
func GetUser(ctx context.Context) string {
	if v, ok := ctx.Value(userKey).(string); ok {
		return v
	}
	return ""
}

// GetOperation returns the operation name from the context, or "".
func GetOperation(ctx context.Context) string {
	if v, ok := ctx.Value(operationKey).(string); ok {
		return v
	}
	return ""
}
