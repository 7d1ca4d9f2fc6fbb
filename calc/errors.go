package calc

import (
	"errors"
	"fmt"
)

var (
	ErrDivisionByZero    = errors.New("division by zero")
	ErrInvalidExpression = errors.New("invalid expression")
	ErrInvalidScientific = errors.New("invalid scientific operation")
	ErrMemoryOperation   = errors.New("memory operation failed")
	// ErrNothingToExport is returned when exporting an empty history log.
	ErrNothingToExport = errors.New("nothing to export")

	ErrSyntax   = fmt.Errorf("%w: syntax error", ErrInvalidExpression)
	ErrName     = fmt.Errorf("%w: name not allowed", ErrInvalidExpression)
	ErrArity    = fmt.Errorf("%w: bad arguments", ErrInvalidExpression)
	ErrDomain   = fmt.Errorf("%w: math domain error", ErrInvalidExpression)
	ErrOverflow = fmt.Errorf("%w: numerical result out of range", ErrInvalidExpression)
)

// Message returns the fixed user-visible text for err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDivisionByZero):
		return "Division by zero"
	case errors.Is(err, ErrInvalidScientific):
		return "Invalid scientific operation"
	case errors.Is(err, ErrMemoryOperation):
		return "Memory operation failed"
	case errors.Is(err, ErrNothingToExport):
		return "No history yet"
	case errors.Is(err, ErrInvalidExpression):
		return "Invalid input"
	default:
		return err.Error()
	}
}
