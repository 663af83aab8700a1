package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and services translate them into domain errors:
//   - ErrNotFound: the row does not exist
//   - ErrAlreadyUsed: a unique key (ob_number, email, id_number) is taken
//   - ErrUnavailable: a backing service (redis, kafka) cannot be reached
//
// Input validation failures use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
