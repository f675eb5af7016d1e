package testutil

import (
	"context"
	"time"

	"docverify/pkg/requestcontext"
)

// ClientContext returns a context carrying client metadata and a pinned
// request time, as the HTTP middleware chain would.
func ClientContext(ip, userAgent string, now time.Time) context.Context {
	ctx := requestcontext.WithClientMetadata(context.Background(), ip, userAgent)
	return requestcontext.WithTime(ctx, now)
}

// OfficerContext adds an authenticated officer to ctx.
func OfficerContext(ctx context.Context, officerID string) context.Context {
	return requestcontext.WithOfficerID(ctx, officerID)
}
