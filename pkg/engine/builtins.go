package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/garmentsim/bodyseg/pkg/seg"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource transforms rule script source before passing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal).
//     This avoids registering keyword symbols as globals, which would
//     conflict with user-defined variables of the same name.
//
//  2. Lisp ; line comments become zygomys // comments.
//
//  3. Kebab-case to underscore outside strings: max-count -> max_count.
//     zygomys reads a bare hyphen as subtraction. Keyword names are
//     untouched because they become string literals in step 1.
//
// All transformations respect double-quoted string boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Copy string literals verbatim.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword". := is left alone.
		if b[i] == ':' && i+1 < len(b) && b[i+1] != '=' && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, []byte(kwPrefix)...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue
		}
		// Kebab hyphen between identifier characters becomes underscore.
		if b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string. Returns the
// keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if len(str.S) > len(kwPrefix) && str.S[:len(kwPrefix)] == kwPrefix {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword
// argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords consume the following value; a trailing keyword gets nil.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toSide extracts a seg.Side from a keyword (:left) or string ("left").
func toSide(s zygo.Sexp) (seg.Side, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return seg.SideAny, fmt.Errorf("expected side keyword, got %T (%s)", s, s.SexpString(nil))
	}
	name := str.S
	if kw, isKeyword := isKW(s); isKeyword {
		name = kw
	}
	switch name {
	case "any":
		return seg.SideAny, nil
	case "left":
		return seg.SideLeft, nil
	case "right":
		return seg.SideRight, nil
	case "center":
		return seg.SideCenter, nil
	}
	return seg.SideAny, fmt.Errorf("unknown side %q (want left, right, center or any)", name)
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

// registerBuiltins installs the rule DSL into a fresh sandbox. Each
// successful `band` call appends to *bands, so script declaration order
// is band evaluation order.
//
//	(band "body" 0.45 0.80 :side :center :max-lateral 0.3)
//	(band "left_arm" 0.45 0.80 :side :left)
//	(band "left_leg" 0.0 0.45 :side :left :below 0.5)
//	(band "face_internal" 0.85 1.0 :above 0.85)
func registerBuiltins(env *zygo.Zlisp, bands *[]seg.Band) {
	env.AddFunction("band", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		parsed := parseArgs(args)
		if len(parsed.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("band: want (band name min max ...), got %d positional args", len(parsed.positional))
		}

		label, err := toString(parsed.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("band: name: %w", err)
		}
		if label == "" {
			return zygo.SexpNull, fmt.Errorf("band: name must not be empty")
		}
		min, err := toFloat64(parsed.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("band %q: min: %w", label, err)
		}
		max, err := toFloat64(parsed.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("band %q: max: %w", label, err)
		}
		if min > max {
			return zygo.SexpNull, fmt.Errorf("band %q: min %g exceeds max %g", label, min, max)
		}

		b := seg.Band{Label: seg.Label(label), Min: min, Max: max}

		if v, ok := parsed.kw["side"]; ok {
			b.Side, err = toSide(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("band %q: side: %w", label, err)
			}
		}
		if v, ok := parsed.kw["max-lateral"]; ok {
			b.MaxLateral, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("band %q: max-lateral: %w", label, err)
			}
			if b.MaxLateral <= 0 {
				return zygo.SexpNull, fmt.Errorf("band %q: max-lateral must be positive", label)
			}
		}
		if b.Side == seg.SideCenter && b.MaxLateral == 0 {
			return zygo.SexpNull, fmt.Errorf("band %q: side center requires :max-lateral", label)
		}
		if v, ok := parsed.kw["below"]; ok {
			b.Below, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("band %q: below: %w", label, err)
			}
			b.BelowSet = true
		}
		if v, ok := parsed.kw["above"]; ok {
			b.Above, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("band %q: above: %w", label, err)
			}
			b.AboveSet = true
		}

		*bands = append(*bands, b)
		return zygo.SexpNull, nil
	})
}
