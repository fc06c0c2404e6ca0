package engine

import (
	"fmt"
	"slices"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
)

// Keywords accepted by each builtin that takes keyword arguments.
var (
	paperKeywords    = []string{"width", "height"}
	foldKeywords     = []string{"axiom", "points", "direction", "mobile", "face", "candidate"}
	foldLineKeywords = []string{"direction", "mobile", "face"}
)

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	return strings.CutPrefix(str.S, kwPrefix)
}

// kwArgs is a builtin's argument list split into keyword values and
// positional arguments.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs splits args for the builtin fn. Every keyword must be in
// allowed, appear once and be followed by a value; a misspelled keyword is
// an error rather than a silently ignored option.
func parseArgs(fn string, args []zygo.Sexp, allowed []string) (kwArgs, error) {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		if !slices.Contains(allowed, name) {
			return pa, fmt.Errorf("%s: unknown keyword :%s, want one of :%s", fn, name, strings.Join(allowed, " :"))
		}
		if _, dup := pa.kw[name]; dup {
			return pa, fmt.Errorf("%s: keyword :%s given twice", fn, name)
		}
		if i+1 == len(args) {
			return pa, fmt.Errorf("%s: keyword :%s needs a value", fn, name)
		}
		i++
		pa.kw[name] = args[i]
	}
	return pa, nil
}
