// internal/core/domain/policy.go
package domain

import "strings"

// PolicyResult is a movement's quantity and identifiers after the product type rules ran.
type PolicyResult struct {
	Quantity    int
	Identifiers []string
	BatchCode   string
	// LegacyFallback marks a SERIALIZED movement without identifiers that is
	// tracked by quantity only.
	LegacyFallback bool
}

// ResolvePolicy applies the identifier discipline of a product type to a movement.
// For BATCH products a zero quantity is derived from the repeated-scan count.
func ResolvePolicy(productType ProductType, quantity int, identifiers []string) (PolicyResult, error) {
	ids := cleanIdentifiers(identifiers)

	switch productType {
	case ProductStandard:
		if len(ids) > 0 {
			return PolicyResult{}, NewValidationError("STANDARD products do not take identifiers")
		}
		if quantity < 1 {
			return PolicyResult{}, NewValidationError("quantity must be at least 1")
		}
		return PolicyResult{Quantity: quantity}, nil

	case ProductSerialized:
		distinct, repeated := DistinctIdentifiers(ids)
		if len(repeated) > 0 {
			return PolicyResult{}, NewDuplicateIdentifierError(repeated...)
		}
		if len(distinct) == 0 {
			if quantity < 1 {
				return PolicyResult{}, NewValidationError("quantity must be at least 1")
			}
			return PolicyResult{Quantity: quantity, LegacyFallback: true}, nil
		}
		if quantity != len(distinct) {
			return PolicyResult{}, NewQuantityIdentifierMismatchError(quantity, len(distinct))
		}
		return PolicyResult{Quantity: quantity, Identifiers: distinct}, nil

	case ProductBatch:
		distinct, _ := DistinctIdentifiers(ids)
		if len(distinct) > 1 {
			return PolicyResult{}, NewMultiBarcodeBatchError(distinct...)
		}
		if quantity == 0 {
			quantity = len(ids)
		}
		if quantity < 1 {
			return PolicyResult{}, NewValidationError("quantity must be at least 1")
		}
		res := PolicyResult{Quantity: quantity}
		if len(distinct) == 1 {
			res.BatchCode = distinct[0]
		}
		return res, nil

	default:
		return PolicyResult{}, NewValidationError("unknown product type %q", productType)
	}
}

func cleanIdentifiers(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
