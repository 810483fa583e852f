package uuid

import (
	"github.com/gofrs/uuid/v5"
)

type UUID = uuid.UUID

var Nil = uuid.Nil

func NewV4() UUID {
	return uuid.Must(uuid.NewV4())
}

func FromString(s string) (UUID, error) {
	return uuid.FromString(s)
}

// Parse returns Nil instead of an error for malformed input.
func Parse(s string) UUID {
	id, err := uuid.FromString(s)
	if err != nil {
		return Nil
	}
	return id
}
