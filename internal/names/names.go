// Package names produces first/last name pairs for seeded users.
package names

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedName is returned when a full name has fewer than two tokens.
var ErrMalformedName = errors.New("malformed full name")

// Name is a first/last pair.
type Name struct {
	First string
	Last  string
}

// Generator is the capability the seeder depends on.
type Generator interface {
	Name(ctx context.Context) (Name, error)
}

// SplitFullName splits on the first whitespace boundary. Extra tokens stay in Last,
// so "Dr. John Smith" yields First "Dr." and Last "John Smith".
func SplitFullName(full string) (Name, error) {
	fields := strings.Fields(full)
	if len(fields) < 2 {
		return Name{}, fmt.Errorf("%w: %q", ErrMalformedName, full)
	}
	return Name{First: fields[0], Last: strings.Join(fields[1:], " ")}, nil
}

// FullNameFunc adapts a full-name source to a Generator.
type FullNameFunc func() string

func (f FullNameFunc) Name(_ context.Context) (Name, error) {
	return SplitFullName(f())
}
