package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/robinvdvleuten/ofx/ast"
)

// Normalize turns a raw leaf value into a tree scalar. Values shaped like
// -?digits([.,]digits)? become numbers, with a comma accepted as the decimal
// separator. Everything else is kept verbatim as a string.
func Normalize(raw string) ast.Value {
	if !isNumericLiteral(raw) {
		return ast.String(raw)
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return ast.String(raw)
	}

	return ast.Number{Float: f, Literal: raw}
}

// isNumericLiteral matches ^-?\d+([.,]\d+)?$ over ASCII digits.
func isNumericLiteral(s string) bool {
	i := 0
	if i < len(s) && s[i] == '-' {
		i++
	}

	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return false
	}
	if i == len(s) {
		return true
	}

	if s[i] != '.' && s[i] != ',' {
		return false
	}
	i++

	start = i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i > start && i == len(s)
}
