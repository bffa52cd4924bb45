package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

var requestDataKey ctxKey

// RequestData carries the authenticated identity for one request. It is set
// by the auth middleware after the token passes revocation and signature
// checks, and is never populated on a rejected request.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	ExpiresAt   int64
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}
