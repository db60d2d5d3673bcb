package domain

import "strings"

// FuncName is a qualified function name split into its package and symbol
// parts. "mod.submod.func" splits into package "mod.submod" and symbol
// "func". A name with no separator is both the package and the symbol.
type FuncName struct {
	Package string
	Symbol  string
}

// SplitName parses a qualified function name.
func SplitName(qualified string) FuncName {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return FuncName{Package: qualified[:i], Symbol: qualified[i+1:]}
	}
	return FuncName{Package: qualified, Symbol: qualified}
}
