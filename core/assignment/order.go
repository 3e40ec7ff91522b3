package assignment

import (
	"errors"
	"strconv"
	"strings"

	"github.com/trezcool/darasa/core"
)

// user-facing order validation messages; checked in this exact priority order.
const (
	errOrderNotIntList = "not a comma separated list of integers."
	errOrderNegative   = "has negative values."
	errOrderTooBig     = "has at least one value bigger than the number of questions."
	errOrderDuplicates = "there are duplicate values."
	errOrderIncomplete = "does not include every question."
)

func newOrderError(msg string) error {
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "order", Error: msg})
}

// ParseOrder parses candidate as a comma separated list of integers and
// validates that it is a permutation of [0, n). It stops at the first
// violation; a candidate that fails never replaces a stored order.
func ParseOrder(candidate string, n int) ([]int, error) {
	parts := strings.Split(candidate, ",")
	order := make([]int, 0, len(parts))
	for _, part := range parts {
		val, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, newOrderError(errOrderNotIntList)
		}
		order = append(order, val)
	}

	for _, val := range order {
		if val < 0 {
			return nil, newOrderError(errOrderNegative)
		}
	}
	for _, val := range order {
		if val >= n {
			return nil, newOrderError(errOrderTooBig)
		}
	}

	seen := make(map[int]struct{}, len(order))
	for _, val := range order {
		if _, ok := seen[val]; ok {
			return nil, newOrderError(errOrderDuplicates)
		}
		seen[val] = struct{}{}
	}

	// distinct in-range values; only a short list can still break the permutation
	if len(order) != n {
		return nil, newOrderError(errOrderIncomplete)
	}
	return order, nil
}
