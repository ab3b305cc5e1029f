// Package evaluator computes the arithmetic expressions users type into
// amount fields ("100000+50000-20%"). The grammar is closed: input is gated
// by a character whitelist before anything is parsed, so the evaluation step
// can never see an identifier, function call, or string.
package evaluator

import (
	"math"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/shopspring/decimal"

	"saku/internal/money"
)

var (
	// Whitelist applied after whitespace stripping, before any rewriting.
	allowedChars = regexp.MustCompile(`^[0-9+\-*/.()%]+$`)

	// A<op>B% with optional operand chain between the leading operand and
	// the percent term. The percent is taken of the leading operand A, not
	// of the whole accumulated expression.
	chainPercent = regexp.MustCompile(`(\d+(?:\.\d+)?)(.*?)([+\-*/])(\d+(?:\.\d+)?)%`)

	// A remaining standalone B% is a plain fraction.
	unaryPercent = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
)

// rewriteLimit caps the rewrite loop; a pathological input stops rewriting
// and fails the residual-percent check instead of spinning.
const rewriteLimit = 32

// Evaluate parses and computes an amount expression, rounding the result to
// the currency's precision with half-away-from-zero semantics. The boolean is
// false when no value could be computed: disallowed characters, a malformed
// expression, or a non-finite result. Absence is not an error; callers treat
// it as "no computed value yet".
func Evaluate(expression string, currency money.Currency) (decimal.Decimal, bool) {
	expr := strings.Join(strings.Fields(expression), "")
	if expr == "" || !allowedChars.MatchString(expr) {
		return decimal.Zero, false
	}

	expr = rewritePercents(expr)
	if strings.Contains(expr, "%") {
		// A percent survived both rewrite passes; refusing here keeps the
		// modulo operator out of the accepted grammar.
		return decimal.Zero, false
	}

	parsed, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return decimal.Zero, false
	}
	result, err := parsed.Evaluate(nil)
	if err != nil {
		return decimal.Zero, false
	}

	value, ok := result.(float64)
	if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero, false
	}

	return money.Round(value, currency), true
}

// rewritePercents expands percent terms in two passes. First every binary
// A<op>B% becomes A<op>(A*B/100), where A is the leading operand of the
// chain ("50000+4000-20%" -> "50000+4000-(50000*20/100)"). Then any
// remaining unary B% becomes (B/100).
func rewritePercents(expr string) string {
	for i := 0; i < rewriteLimit; i++ {
		m := chainPercent.FindStringSubmatchIndex(expr)
		if m == nil {
			break
		}
		lead := expr[m[2]:m[3]]
		mid := expr[m[4]:m[5]]
		op := expr[m[6]:m[7]]
		pct := expr[m[8]:m[9]]
		expr = expr[:m[0]] + lead + mid + op + "(" + lead + "*" + pct + "/100)" + expr[m[1]:]
	}
	return unaryPercent.ReplaceAllString(expr, "($1/100)")
}
