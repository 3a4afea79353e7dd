// Package normalize implements spec §4.D: date parsing, sender-domain
// extraction, quoted-reply stripping, content hashing, and best-effort
// language detection.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// unitSeparator is the byte 0x1E used to join content-hash inputs, per spec.
const unitSeparator = "\x1e"

// Result is the output of normalizing one raw ingested document.
type Result struct {
	TS             time.Time
	TSFallback     bool // true if the date could not be parsed and "now" was substituted
	SenderDomain   string
	CleanBody      string
	ContentHash    string
	Lang           string
	LangDetected   bool
}

var (
	separatorLineRe = regexp.MustCompile(`^\s*(--|---|____+)\s*$`)
	onWroteRe       = regexp.MustCompile(`(?i)^On .*wrote:\s*$`)
	signoffRe       = regexp.MustCompile(`(?i)^(Best|Kind|Warm)\s+(regards|wishes)`)
)

// Normalize applies spec §4.D to one raw document.
func Normalize(subject, body, accountID, externalID, fromAddr, rawDate string) Result {
	ts, fallback := parseDate(rawDate)
	clean := cleanBody(body)
	hash := ContentHash(subject, strings.TrimSpace(clean), accountID, externalID)
	lang, detected := detectLanguage(clean)
	return Result{
		TS:           ts,
		TSFallback:   fallback,
		SenderDomain: senderDomain(fromAddr),
		CleanBody:    strings.TrimSpace(clean),
		ContentHash:  hash,
		Lang:         lang,
		LangDetected: detected,
	}
}

// ContentHash computes the deterministic sha256 hex digest of the four
// identifying fields, joined with the 0x1E unit separator.
func ContentHash(subject, plainText, accountID, externalID string) string {
	joined := strings.Join([]string{subject, plainText, accountID, externalID}, unitSeparator)
	sum := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(sum[:])
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Now().UTC(), true
	}
	if t, err := mail.ParseDate(raw); err == nil {
		return t.UTC(), false
	}
	for _, layout := range []string{time.RFC3339, time.RFC1123Z, time.RFC1123} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), false
		}
	}
	return time.Now().UTC(), true
}

func senderDomain(fromAddr string) string {
	fromAddr = strings.TrimSpace(fromAddr)
	if fromAddr == "" {
		return ""
	}
	if addr, err := mail.ParseAddress(fromAddr); err == nil {
		fromAddr = addr.Address
	}
	parts := strings.SplitN(fromAddr, "@", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[1]))
}

// cleanBody walks lines, stopping at the first quoted-reply marker, and
// trims the surviving lines.
func cleanBody(body string) string {
	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(strings.TrimSpace(trimmed), ">"):
			return strings.Join(kept, "\n")
		case onWroteRe.MatchString(strings.TrimSpace(trimmed)):
			return strings.Join(kept, "\n")
		case separatorLineRe.MatchString(trimmed):
			return strings.Join(kept, "\n")
		case signoffRe.MatchString(strings.TrimSpace(trimmed)):
			return strings.Join(kept, "\n")
		}
		kept = append(kept, strings.TrimSpace(trimmed))
	}
	return strings.Join(kept, "\n")
}

// turkishRunes are the diacritics that mark Turkish text.
const turkishRunes = "ıİğĞşŞöÖçÇüÜ"

// detectLanguage is a best-effort heuristic over the first 4000 characters:
// presence of Turkish-specific diacritics implies "tr", otherwise "en" once
// the text contains enough ASCII letters to judge, else undetected.
func detectLanguage(body string) (string, bool) {
	window := body
	if r := []rune(window); len(r) > 4000 {
		window = string(r[:4000])
	}
	if window == "" {
		return "", false
	}
	if strings.ContainsAny(window, turkishRunes) {
		return "tr", true
	}
	letters := 0
	for _, r := range window {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	if letters >= 20 {
		return "en", true
	}
	return "", false
}
