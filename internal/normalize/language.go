// Package normalize provides utilities for normalizing and sanitizing catalog data.
package normalize

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// bibliographicCodes maps ISO 639-2/B codes, which catalogs still emit, to ISO 639-1.
//
//nolint:gochecknoglobals // Static lookup table for language normalization
var bibliographicCodes = map[string]string{
	"ger": "de", "fre": "fr", "dut": "nl", "chi": "zh", "cze": "cs",
	"gre": "el", "per": "fa", "rum": "ro", "slo": "sk", "alb": "sq",
	"arm": "hy", "baq": "eu", "bur": "my", "geo": "ka", "ice": "is",
	"mac": "mk", "may": "ms", "tib": "bo", "wel": "cy",
}

// namedLanguages are the languages recognized by their English name.
//
//nolint:gochecknoglobals // Static lookup table for language normalization
var namedLanguages = []string{
	"af", "am", "ar", "az", "bg", "bn", "bo", "bs", "ca", "cs", "cy", "da",
	"de", "el", "en", "eo", "es", "et", "eu", "fa", "fi", "fr", "ga", "gd",
	"gl", "gu", "ha", "he", "hi", "hr", "hu", "hy", "id", "ig", "is", "it",
	"ja", "jv", "ka", "kk", "km", "kn", "ko", "la", "lo", "lt", "lv", "mk",
	"ml", "mn", "mr", "ms", "my", "ne", "nl", "no", "pa", "pl", "pt", "ro",
	"ru", "si", "sk", "sl", "sq", "sr", "su", "sv", "sw", "ta", "te", "th",
	"tl", "tr", "uk", "ur", "uz", "vi", "xh", "yo", "zh", "zu",
}

// languageAliases covers names that differ from the English display name.
//
//nolint:gochecknoglobals // Static lookup table for language normalization
var languageAliases = map[string]string{
	"farsi": "fa", "filipino": "tl", "mandarin": "zh", "cantonese": "zh",
}

var (
	namesOnce sync.Once
	nameCodes map[string]string
)

func languageNameCodes() map[string]string {
	namesOnce.Do(func() {
		namer := display.English.Languages()
		nameCodes = make(map[string]string, len(namedLanguages)+len(languageAliases))
		for _, code := range namedLanguages {
			if name := namer.Name(language.Make(code)); name != "" {
				nameCodes[strings.ToLower(name)] = code
			}
		}
		for name, code := range languageAliases {
			nameCodes[name] = code
		}
	})
	return nameCodes
}

// LanguageCode converts various language representations to ISO 639-1 codes.
// It handles:
//   - ISO 639-1 codes: "en" -> "en"
//   - ISO 639-2 codes: "eng" -> "en", "ger" -> "de"
//   - Locale codes: "en-US", "en_GB" -> "en"
//   - Language names: "English", "ENGLISH" -> "en"
//
// Returns empty string for unrecognized values.
func LanguageCode(raw string) string {
	s := strings.ToLower(strings.TrimSpace(sanitizeString(raw)))
	if s == "" {
		return ""
	}

	if code, ok := languageNameCodes()[s]; ok {
		return code
	}

	s = strings.ReplaceAll(s, "_", "-")
	if primary, _, found := strings.Cut(s, "-"); found {
		s = primary
	}

	if code, ok := bibliographicCodes[s]; ok {
		return code
	}

	tag, err := language.Parse(s)
	if err != nil || tag == language.Und {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	code := base.String()
	if len(code) != 2 {
		// No two-letter form exists for this language.
		return ""
	}
	return code
}

// Language converts various language representations to English display names.
// "en" -> "English", "german" -> "German", "deu" -> "German".
// Returns empty string for unrecognized values.
func Language(raw string) string {
	code := LanguageCode(raw)
	if code == "" {
		return ""
	}
	return display.English.Languages().Name(language.Make(code))
}

// sanitizeString removes null bytes, which some catalog payloads carry.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
