package extract

import (
	"github.com/minicart/minicart/internal/page"
	"github.com/minicart/minicart/internal/types"
)

// DetectFormat classifies the structured-data payloads a page's inline
// scripts expose. Declared MIME types are trusted first; content is
// sniffed only to catch untyped payloads. Scanning stops early once both
// signals are present, and — unless FullScan is set — after MaxScripts
// scripts regardless of what was found.
func DetectFormat(p *page.Page, opts Options) types.DataFormat {
	opts = opts.withDefaults()

	hasLD := false
	hasJSON := false
	checked := 0

	for _, s := range p.Scripts() {
		if !opts.FullScan && checked >= opts.MaxScripts {
			break
		}
		checked++

		if isLDType(s.Type) {
			hasLD = true
		} else if isAnyJSONButLD(s.Type) {
			hasJSON = true
		}

		txt := s.Text(opts.MaxChars)
		if txt != "" {
			if looksLikeLD(txt) && productWordRe.MatchString(txt) {
				hasLD = true
			}
			if productKeyRe.MatchString(txt) &&
				(nameKeyRe.MatchString(txt) || titleKeyRe.MatchString(txt)) {
				hasJSON = true
			}
		}

		if hasLD && hasJSON {
			return types.FormatBoth
		}
	}

	switch {
	case hasLD && hasJSON:
		return types.FormatBoth
	case hasLD:
		return types.FormatLDJSON
	case hasJSON:
		return types.FormatJSON
	default:
		return types.FormatNone
	}
}
