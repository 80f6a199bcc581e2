package feed

import "errors"

// ErrFetchFailed is returned when a feed cannot be retrieved or parsed:
// network errors, non-2xx responses and invalid feed syntax.
var ErrFetchFailed = errors.New("feed fetch failed")
