package cart

import (
	"math"
	"net/url"
	"strings"

	"github.com/minicart/minicart/internal/types"
)

// IsComplete reports whether a candidate record is good enough to become
// a cart line: a real name, a finite price, and absolute image and
// product URLs. Upserts of anything less are rejected so half-extracted
// pages never pollute the cart.
func IsComplete(info types.ProductInfo) bool {
	if len(strings.TrimSpace(info.Name)) <= 1 {
		return false
	}
	if info.Price == nil || math.IsNaN(*info.Price) || math.IsInf(*info.Price, 0) {
		return false
	}
	return isAbsURL(info.ImageURL) && isAbsURL(info.ProductURL)
}

func isAbsURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}
