package yamlbean

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnknownKey      = "unknown_key"
	CodeInvalidType     = "invalid_type"
	CodeKeyNotScalar    = "key_not_scalar"
	CodeNotMapping      = "not_mapping"
	CodeStrategyInit    = "strategy_init"
	CodeConstructFailed = "construct_failed"
	CodeTargetInvalid   = "target_invalid"
)

// Issue represents a single construction error.
type Issue struct {
	Path    string // slash-separated key path (for example: /spouse/name).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
	// Line and Column locate the offending node in the source document
	// (1-based, 0 when unknown).
	Line   int
	Column int
}

// Issues is a collection of construction errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. unknown_key at /spouse/name: no property "nme" in Person
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes underlying causes so errors.Is/As can see through Issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// issueAt builds a single-issue error located at the given node.
func issueAt(n *yaml.Node, path, code, msg string, cause error) Issues {
	is := Issue{Path: path, Code: code, Message: msg, Cause: cause}
	if n != nil {
		is.Line = n.Line
		is.Column = n.Column
	}
	return Issues{is}
}
