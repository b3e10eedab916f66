package goshape

import "github.com/reoring/goshape/i18n"

// IssueAt creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p PathRef, code, msg string, params map[string]any) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: msg, Params: params}
}

// RequiredIssue reports a missing required value at p. component names the
// declaration site being validated and may be empty.
func RequiredIssue(p PathRef, component string) Issue {
	params := map[string]any{}
	data := map[string]string{"path": p.Pointer()}
	if component != "" {
		params["component"] = component
		data["component"] = component
	}
	return Issue{Path: p.Pointer(), Code: CodeRequired, Message: i18n.T(CodeRequired, data), Params: params}
}

// InvalidTypeIssue reports a value at p that is not of the expected type.
func InvalidTypeIssue(p PathRef, expected, component string) Issue {
	params := map[string]any{"expected": expected}
	data := map[string]string{"path": p.Pointer(), "expected": expected}
	if component != "" {
		params["component"] = component
		data["component"] = component
	}
	return Issue{Path: p.Pointer(), Code: CodeInvalidType, Message: i18n.T(CodeInvalidType, data), Hint: "expected " + expected, Params: params}
}

// DuplicateKeyIssue reports an object key at pointer that repeats an earlier
// key of the same object.
func DuplicateKeyIssue(pointer string) Issue {
	return Issue{Path: pointer, Code: CodeDuplicateKey, Message: i18n.T(CodeDuplicateKey, map[string]string{"path": pointer})}
}
