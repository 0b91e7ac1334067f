// error_handler.go defines the optional error-reporting path of a PlaybackCallback.

package types

import (
	"context"
)

// ErrorHandler may be implemented by a PlaybackCallback to be notified
// about non-fatal errors: decode failures, seek failures, sink failures
// and read failures. These errors never stop the playback by themselves.
type ErrorHandler interface {
	OnError(ctx context.Context, err error)
}
