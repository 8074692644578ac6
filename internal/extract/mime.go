package extract

import "regexp"

var (
	ldTypeRe         = regexp.MustCompile(`(?i)^\s*application/ld\+json\b`)
	plainJSONTypeRe  = regexp.MustCompile(`(?i)^\s*application/json\b`)
	vendorJSONTypeRe = regexp.MustCompile(`(?i)^\s*[\w.-]+/[\w.+-]*\+json\b`)
	ldTokenRe        = regexp.MustCompile(`(?i)ld\+json`)

	ldContextRe   = regexp.MustCompile(`"@context"\s*:`)
	ldTypeKeyRe   = regexp.MustCompile(`"@type"\s*:`)
	productWordRe = regexp.MustCompile(`(?i)"Product"`)
	productKeyRe  = regexp.MustCompile(`"product"\s*:`)
	nameKeyRe     = regexp.MustCompile(`"name"\s*:`)
	titleKeyRe    = regexp.MustCompile(`"title"\s*:`)
)

// isLDType reports whether a script MIME type declares JSON-LD.
func isLDType(t string) bool { return ldTypeRe.MatchString(t) }

// isAnyJSONButLD reports whether a script MIME type declares plain JSON or
// any vendor +json flavor other than ld+json.
func isAnyJSONButLD(t string) bool {
	if plainJSONTypeRe.MatchString(t) {
		return true
	}
	return vendorJSONTypeRe.MatchString(t) && !ldTokenRe.MatchString(t)
}

// looksLikeLD sniffs untyped script content for JSON-LD shape.
func looksLikeLD(txt string) bool {
	return ldContextRe.MatchString(txt) && ldTypeKeyRe.MatchString(txt)
}

// looksLikeJSONPayload sniffs for content that starts like a JSON literal.
func looksLikeJSONPayload(txt string) bool {
	return len(txt) > 0 && (txt[0] == '{' || txt[0] == '[')
}
