package id

import "github.com/google/uuid"

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}

// Valid reports whether raw is a canonical UUID string.
func Valid(raw string) bool {
	_, err := uuid.Parse(raw)
	return err == nil && len(raw) == 36
}
