// Package engine evaluates band rule scripts for the geometric
// segmentation method. It wraps zygomys in a sandboxed environment and
// produces an ordered band list from user source code, so rule sets can
// be swapped without recompiling. The compiled-in seg.DefaultBands
// remain the default; scripts are opt-in.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/garmentsim/bodyseg/pkg/seg"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code, or an invalid
// rule set.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter for band rule evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate takes Lisp source code and produces an ordered band list for
// seg.GeometricWithBands. Declaration order in the script is evaluation
// order for the bands, including the first-match-wins tie-break.
//
// Return semantics:
//   - On success: returns bands + nil errors + nil error
//   - On parse/eval failure or an invalid rule set: returns nil bands +
//     eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) ([]seg.Band, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		bands, evalErrs, err := e.evaluate(source)
		ch <- evalResult{bands: bands, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) ([]seg.Band, []EvalError, error) {
	// Sandbox mode prevents user code from accessing the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	var bands []seg.Band
	registerBuiltins(env, &bands)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	if evalErrs := validateRuleSet(bands); len(evalErrs) > 0 {
		return nil, evalErrs, nil
	}
	return bands, nil, nil
}

// validateRuleSet checks a completed script's band list. A usable rule
// set has at least one band and must declare the fallback label, since
// small-region cleanup and the unassigned sweep merge into it.
func validateRuleSet(bands []seg.Band) []EvalError {
	if len(bands) == 0 {
		return []EvalError{{Message: "rule set defines no bands"}}
	}
	for _, b := range bands {
		if b.Label == seg.FallbackLabel {
			return nil
		}
	}
	return []EvalError{{
		Message: fmt.Sprintf("rule set must define a %q band", string(seg.FallbackLabel)),
	}}
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError
// values, extracting line numbers from the message where possible.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
