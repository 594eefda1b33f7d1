package devtools

import (
	"context"
	"encoding/json"

	"github.com/chromedp/cdproto"
)

// ScriptRunner evaluates opaque script payloads on the bound tab and
// extracts the single value they return.
type ScriptRunner struct {
	session *Session
}

// NewScriptRunner creates a ScriptRunner over the given Session.
func NewScriptRunner(s *Session) *ScriptRunner {
	return &ScriptRunner{session: s}
}

// Evaluate round-trips Runtime.evaluate with returnByValue and returns the
// nested result value as a string. A script that evaluates to undefined or
// void yields "" with no error: a missing value is a valid outcome. Only
// malformed replies and error payloads fail.
func (r *ScriptRunner) Evaluate(ctx context.Context, script string) (string, error) {
	params := struct {
		Expression    string `json:"expression"`
		ReturnByValue bool   `json:"returnByValue"`
	}{Expression: script, ReturnByValue: true}

	result, err := r.session.RoundTrip(ctx, string(cdproto.CommandRuntimeEvaluate), params)
	if err != nil {
		return "", err
	}
	if len(result) == 0 {
		return "", newError(CodeProtocol, "Runtime.evaluate reply carries no result", nil)
	}

	var out struct {
		Result struct {
			Value json.RawMessage `json:"value"`
		} `json:"result"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		return "", newError(CodeProtocol, "malformed Runtime.evaluate result", err)
	}
	if len(out.Result.Value) == 0 {
		return "", nil
	}

	// String values arrive JSON-encoded; anything else is returned verbatim.
	var s string
	if err := json.Unmarshal(out.Result.Value, &s); err != nil {
		return string(out.Result.Value), nil
	}
	return s, nil
}
