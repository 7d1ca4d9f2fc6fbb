// Package calc implements the calculator core: a closed-grammar expression evaluator, the
// scientific shortcut dispatcher, the memory register and the append-only history log.
//
// The package has no UI or platform dependencies; callers feed it strings and display what it returns.
package calc
