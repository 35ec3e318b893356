package gnupg

import (
	"strings"
	"unicode"
)

const (
	// StatusPrefix marks a machine-readable line on the status channel.
	StatusPrefix = "[GNUPG:] "

	// DebugPrefix marks a human-oriented diagnostic line from gpg.
	DebugPrefix = "gpg: "

	nothingExported = "WARNING: nothing exported"
	noValidData     = "no valid OpenPGP data found"

	badSignatureStatus = "bad signature"
)

// Status keywords that affect Result.Success.
const (
	StatusFailure            = "FAILURE"
	StatusBadSig             = "BADSIG"
	StatusNoData             = "NODATA"
	StatusDeleteProblem      = "DELETE_PROBLEM"
	StatusUnknownKeyword     = "UNKNOWN_KEYWORD"
	StatusNoPassphrase       = "NO_PASSPHRASE"
	StatusInvalidFingerprint = "INVALID_FINGERPRINT"
	StatusBadPassphrase      = "BAD_PASSPHRASE"
)

// deleteProblems maps the DELETE_PROBLEM reason code to a description.
var deleteProblems = map[string]string{
	"1": "No such key",
	"2": "Must delete secret key first",
	"3": "Ambiguous specification",
	"4": "Key is stored on a smartcard",
}

// DeleteProblemReason describes a DELETE_PROBLEM reason code.
func DeleteProblemReason(code string) string {
	code = strings.TrimSpace(code)
	if reason, ok := deleteProblems[code]; ok {
		return reason
	}
	return "Unknown delete problem: " + code
}

type statusHandler func(c *collector, value string)

// statusHandlers is the closed set of keywords with an effect beyond
// updating Status/StatusMessage. Handlers run with c.mu held.
var statusHandlers = map[string]statusHandler{
	StatusFailure:            handleFailure,
	StatusBadSig:             handleBadSig,
	StatusNoData:             handleNoData,
	StatusDeleteProblem:      handleDeleteProblem,
	StatusUnknownKeyword:     problemHandler(StatusUnknownKeyword, "unknown_keyword"),
	StatusNoPassphrase:       problemHandler(StatusNoPassphrase, "passphrase"),
	StatusInvalidFingerprint: problemHandler(StatusInvalidFingerprint, "fingerprint"),
	StatusBadPassphrase:      problemHandler(StatusBadPassphrase, "passphrase"),
}

// handleFailure treats FAILURE as fatal except when exporting secret keys:
// gpg reports FAILURE there if any single key could not be exported, so the
// export only failed when nothing at all came out.
func handleFailure(c *collector, _ string) {
	if c.result.Operation == OpExportSecretKey {
		c.result.Success = !c.rawContains(nothingExported)
		return
	}
	c.result.Success = false
}

func handleBadSig(c *collector, value string) {
	c.result.Success = false
	c.result.Status = badSignatureStatus
	keyID, username := splitKeyword(value)
	c.result.Problems = append(c.result.Problems, Problem{
		"status":   badSignatureStatus,
		"key_id":   keyID,
		"username": username,
	})
}

func handleNoData(c *collector, _ string) {
	if c.rawContains(noValidData) {
		c.result.Success = false
	}
}

func handleDeleteProblem(c *collector, value string) {
	c.result.Success = false
	c.result.Problems = append(c.result.Problems, Problem{
		"status":         StatusDeleteProblem,
		"delete_problem": DeleteProblemReason(value),
	})
}

func problemHandler(keyword, field string) statusHandler {
	return func(c *collector, value string) {
		c.result.Success = false
		c.result.Problems = append(c.result.Problems, Problem{
			"status": keyword,
			field:    value,
		})
	}
}

// ParseStatusLine splits a status channel line into its keyword and payload.
// ok is false when the line does not carry the status prefix.
func ParseStatusLine(line string) (keyword, value string, ok bool) {
	line = strings.TrimRight(line, "\r")
	rest, found := strings.CutPrefix(line, StatusPrefix)
	if !found {
		return "", "", false
	}
	keyword, value = splitKeyword(rest)
	return keyword, value, true
}

// splitKeyword splits s at its first whitespace run.
func splitKeyword(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}

// handleStatusData dispatches every line of a fully read status channel.
func (c *collector) handleStatusData(data string, onDebug func(string)) {
	for _, line := range strings.Split(data, "\n") {
		if keyword, value, ok := ParseStatusLine(line); ok {
			c.handleStatus(keyword, value)
			continue
		}
		if debug, found := strings.CutPrefix(strings.TrimRight(line, "\r"), DebugPrefix); found {
			c.captureDebug(debug)
			if onDebug != nil {
				onDebug(debug)
			}
		}
	}
}
