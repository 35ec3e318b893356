package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
)

var validityNames = map[string]string{
	"o": "new",
	"i": "invalid",
	"d": "disabled",
	"r": "revoked",
	"e": "expired",
	"-": "unknown",
	"q": "undefined",
	"n": "never",
	"m": "marginal",
	"f": "full",
	"u": "ultimate",
	"w": "well-known",
	"s": "special",
}

// ValidityName translates a validity or ownertrust letter. Unknown letters
// are returned unchanged.
func ValidityName(letter string) string {
	if name, ok := validityNames[letter]; ok {
		return name
	}
	return letter
}

var capabilityNames = map[rune]string{
	'e': "encrypt",
	's': "sign",
	'c': "certify",
	'a': "authenticate",
}

// CapabilityNames lists the usages of a key from its capabilities column.
// Only the lowercase letters apply to the key itself; the uppercase ones
// summarize the whole key and are ignored.
func CapabilityNames(caps string) []string {
	var names []string
	for _, r := range caps {
		if name, ok := capabilityNames[r]; ok {
			names = append(names, name)
		}
	}
	return names
}

var algorithmNames = map[string]string{
	"1":  "rsa",
	"2":  "rsa",
	"3":  "rsa",
	"16": "elg",
	"17": "dsa",
	"18": "ecdh",
	"19": "ecdsa",
	"22": "eddsa",
}

// AlgorithmName renders the algorithm and size the way gpg does, for
// example "rsa3072" or "ed25519".
func AlgorithmName(r gnupg.Record) string {
	if r.Curve != "" && r.Curve != gnupg.Unavailable {
		return r.Curve
	}
	name, ok := algorithmNames[r.Algorithm]
	if !ok {
		name = "algo" + r.Algorithm
	}
	if r.Length != "" && r.Length != gnupg.Unavailable {
		name += r.Length
	}
	return name
}

// FormatDate converts an epoch-seconds listing column to YYYY-MM-DD. ISO
// 8601 values and anything unparsable are returned as-is.
func FormatDate(value string) string {
	secs, err := strconv.ParseInt(value, 10, 64)
	if err != nil || secs <= 0 {
		return value
	}
	return time.Unix(secs, 0).UTC().Format("2006-01-02")
}

func usageBadge(caps string) string {
	var b strings.Builder
	for _, r := range caps {
		if _, ok := capabilityNames[r]; ok {
			b.WriteRune(r - 'a' + 'A')
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return " [" + b.String() + "]"
}

func recordLine(r gnupg.Record) string {
	line := fmt.Sprintf("%-5s %s %s%s", r.Type, AlgorithmName(r), FormatDate(r.CreationDate), usageBadge(r.Capabilities))
	if r.Expires != "" && r.Expires != gnupg.Unavailable {
		line += " " + Muted.Sprintf("expires: %s", FormatDate(r.Expires))
	}
	switch r.Validity {
	case "r", "e", "d", "i":
		line += " " + Warning.Sprintf("[%s]", ValidityName(r.Validity))
	}
	return line
}

// FormatKey renders a key, its user IDs and subkeys as an indented block.
func FormatKey(k gnupg.Key) string {
	var b strings.Builder
	b.WriteString(recordLine(k.Record))
	b.WriteString("\n")
	if k.Fingerprint != "" {
		fmt.Fprintf(&b, "      %s\n", KeyID.Sprint(k.Fingerprint))
	}
	for _, uid := range k.UserIDs {
		fmt.Fprintf(&b, "uid   [%s] %s\n", ValidityName(k.Validity), Highlight.Sprint(uid))
	}
	for _, sig := range k.Signatures {
		fmt.Fprintf(&b, "sig   %s %s\n", KeyID.Sprint(sig.KeyID), sig.UserID)
	}
	for _, sub := range k.Subkeys {
		b.WriteString(recordLine(sub.Record))
		b.WriteString("\n")
		if sub.Fingerprint != "" {
			fmt.Fprintf(&b, "      %s\n", KeyID.Sprint(sub.Fingerprint))
		}
	}
	return b.String()
}
