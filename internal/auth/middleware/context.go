package auth

import "context"

type ctxKey string

const (
	ctxKeySub     ctxKey = "sub"
	ctxKeyAPIKey  ctxKey = "apiKey"
	ctxKeyCounsel ctxKey = "counsel"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string { return str(ctx, ctxKeySub) }

// WithAPIKey stores the teacher's rewards API key for the request.
func WithAPIKey(ctx context.Context, k string) context.Context {
	return context.WithValue(ctx, ctxKeyAPIKey, k)
}

func APIKeyFromContext(ctx context.Context) string { return str(ctx, ctxKeyAPIKey) }

// WithCounsel stores the counsel session a student signed into.
func WithCounsel(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCounsel, id)
}

func CounselFromContext(ctx context.Context) string { return str(ctx, ctxKeyCounsel) }

func str(ctx context.Context, k ctxKey) string {
	if v := ctx.Value(k); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
