package spatialmath

import (
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// ParseVector reads a point written as three space or comma delimited numbers, such as "1 2.5 -3".
func ParseVector(s string) (r3.Vector, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) != 3 {
		return r3.Vector{}, errors.Errorf("expected 3 coordinates in %q, got %d", s, len(fields))
	}
	var converted [3]float64
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return r3.Vector{}, errors.Wrapf(err, "invalid coordinate %q", field)
		}
		converted[i] = value
	}
	return r3.Vector{X: converted[0], Y: converted[1], Z: converted[2]}, nil
}
