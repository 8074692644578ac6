package cart

import (
	"strconv"
	"strings"

	"github.com/minicart/minicart/internal/types"
)

// ProductID derives the stable identity for a candidate record. A product
// URL is the natural identity; without one, a djb2 hash of the remaining
// fields stands in. Two distinct products sharing name, image, and
// price-as-text can collide; that risk is accepted.
func ProductID(info types.ProductInfo) string {
	if info.ProductURL != "" {
		return info.ProductURL
	}
	sig := strings.Join([]string{info.Name, info.ImageURL, info.PriceString()}, "|")
	return "hash:" + djb2(sig)
}

// djb2 is the classic multiply-by-33 string hash, reduced to unsigned
// 32 bits and rendered as hex.
func djb2(s string) string {
	h := uint32(5381)
	for i := 0; i < len(s); i++ {
		h = h*33 + uint32(s[i])
	}
	return strconv.FormatUint(uint64(h), 16)
}
