package ids

import "github.com/segmentio/ksuid"

// New returns a K-sortable unique identifier suitable for primary keys.
func New() string {
	return ksuid.New().String()
}
