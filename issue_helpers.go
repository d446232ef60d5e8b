package jsongram

import "github.com/reoring/jsongram/i18n"

// IssueAt creates an Issue at the given JSON Pointer with a localized message
// for code. Offset is left unknown.
func IssueAt(path, code, hint string, cause error) Issue {
	return Issue{Path: path, Code: code, Message: i18n.T(code, nil), Hint: hint, Cause: cause, Offset: -1}
}
