package cache

import (
	"github.com/matzehuels/debstatus/pkg/errors"
)

// schemaVersion is bumped whenever the stored payload changes shape.
// Entries written with another version are discarded on read.
const schemaVersion = 2

func ioError(cause error, op, key string) error {
	if cause == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeCacheIO, cause, "%s cache entry %s", op, key)
}
