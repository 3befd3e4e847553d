package sheets

import "errors"

// ErrSourceUnavailable marks a fetch that failed after its retry, either
// at transport level or with a non-2xx status. Callers may fall back to
// the last good snapshot with staleness indicated.
var ErrSourceUnavailable = errors.New("source unavailable")
