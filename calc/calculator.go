package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Speaker receives every formatted result. Implementations swallow their own failures.
type Speaker interface {
	Say(text string)
}

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
}

// Func names a scientific shortcut.
type Func string

const (
	FuncSin   Func = "sin"
	FuncCos   Func = "cos"
	FuncTan   Func = "tan"
	FuncLog10 Func = "log10"
	FuncLn    Func = "ln"
	FuncSqrt  Func = "sqrt"
	FuncFact  Func = "fact"
	FuncExp   Func = "exp"
)

// Funcs lists the scientific shortcuts in keypad order.
var Funcs = []Func{FuncSin, FuncCos, FuncTan, FuncLog10, FuncLn, FuncSqrt, FuncFact, FuncExp}

// ParseFunc resolves a shortcut name.
func ParseFunc(s string) (Func, bool) {
	for _, f := range Funcs {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// MemoryOp is a memory register action.
type MemoryOp uint8

const (
	MemAdd MemoryOp = iota
	MemSubtract
	MemRecall
	MemClear
)

func (op MemoryOp) String() string {
	switch op {
	case MemAdd:
		return "M+"
	case MemSubtract:
		return "M-"
	case MemRecall:
		return "MR"
	case MemClear:
		return "MC"
	default:
		return "M?"
	}
}

// Calculator owns the expression buffer, the display value, the memory register and
// the history log. It is not safe for concurrent use.
type Calculator struct {
	expr    string
	display string
	memory  float64
	history []string

	speaker Speaker
	log     Logger
}

// New returns an empty calculator. sp and log may be nil.
func New(sp Speaker, log Logger) *Calculator {
	return &Calculator{speaker: sp, log: log}
}

func (c *Calculator) logf(format string, args ...any) {
	if c.log == nil {
		return
	}
	c.log.WriteLineString("calc: " + fmt.Sprintf(format, args...))
}

func (c *Calculator) say(text string) {
	if c.speaker != nil {
		c.speaker.Say(text)
	}
}

// Expression returns the in-progress expression buffer.
func (c *Calculator) Expression() string { return c.expr }

// Display returns the currently shown string.
func (c *Calculator) Display() string { return c.display }

// MemoryValue returns the memory register.
func (c *Calculator) MemoryValue() float64 { return c.memory }

// History returns a copy of the history log, oldest first.
func (c *Calculator) History() []string {
	out := make([]string, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Calculator) setBuffer(s string) {
	c.expr = s
	c.display = s
}

// Press appends s to the expression buffer.
func (c *Calculator) Press(s string) {
	c.setBuffer(c.expr + s)
}

// Backspace removes the last rune of the expression buffer.
func (c *Calculator) Backspace() {
	rs := []rune(c.expr)
	if len(rs) == 0 {
		return
	}
	c.setBuffer(string(rs[:len(rs)-1]))
}

// Clear empties the expression buffer and the display. The memory register is kept.
func (c *Calculator) Clear() {
	c.setBuffer("")
}

// SetExpression replaces the expression buffer, as voice input does.
func (c *Calculator) SetExpression(s string) {
	c.setBuffer(s)
}

// LastAnswer returns the result part of the newest history entry.
func (c *Calculator) LastAnswer() (string, bool) {
	if len(c.history) == 0 {
		return "", false
	}
	last := c.history[len(c.history)-1]
	if i := strings.LastIndex(last, " = "); i >= 0 {
		return last[i+len(" = "):], true
	}
	return last, true
}

// InsertAnswer appends the last answer to the buffer. It does nothing on an empty history.
func (c *Calculator) InsertAnswer() {
	if ans, ok := c.LastAnswer(); ok {
		c.Press(ans)
	}
}

// Evaluate evaluates the expression buffer. On success the formatted result replaces the
// buffer and the display, and "<buffer> = <result>" is appended to the history. On failure
// the buffer and display are emptied and the history is unchanged.
func (c *Calculator) Evaluate() (string, error) {
	raw := c.expr
	v, err := Eval(raw)
	if err != nil {
		c.logf("eval %q failed: %v", raw, err)
		c.setBuffer("")
		return "", err
	}
	res := Format(v)
	c.record(raw+" = "+res, res)
	return res, nil
}

// ApplyFunction applies a scientific shortcut to the display value. Trig shortcuts take
// degrees. An empty display is a no-op that returns ("", nil).
func (c *Calculator) ApplyFunction(fn Func) (string, error) {
	text := c.display
	if text == "" {
		return "", nil
	}
	res, x, err := applyFunc(fn, text)
	if err != nil {
		c.logf("%s(%q) failed: %v", fn, text, err)
		c.setBuffer("")
		return "", err
	}
	c.record(string(fn)+"("+reprFloat(x)+") = "+res, res)
	return res, nil
}

func (c *Calculator) record(entry, res string) {
	c.history = append(c.history, entry)
	c.setBuffer(res)
	c.logf("%s", entry)
	c.say(res)
}

func applyFunc(fn Func, text string) (string, float64, error) {
	x, err := parseDisplayFloat(text)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s(%q): %v", ErrInvalidScientific, fn, text, err)
	}
	var v Value
	switch fn {
	case FuncSin:
		v, err = checked(math.Sin(x*degToRad), x)
	case FuncCos:
		v, err = checked(math.Cos(x*degToRad), x)
	case FuncTan:
		v, err = checked(math.Tan(x*degToRad), x)
	case FuncLog10:
		v, err = logFunc(math.Log10).call([]Value{Float(x)})
	case FuncLn:
		v, err = logFunc(math.Log).call([]Value{Float(x)})
	case FuncSqrt:
		v, err = checked(math.Sqrt(x), x)
	case FuncFact:
		v, err = truncFactorial(x)
	case FuncExp:
		v, err = checked(math.Exp(x), x)
	default:
		err = fmt.Errorf("unknown function %q", fn)
	}
	if err != nil {
		return "", 0, fmt.Errorf("%w: %s(%s): %v", ErrInvalidScientific, fn, reprFloat(x), err)
	}
	return Format(v), x, nil
}

// truncFactorial is the factorial of x truncated toward zero.
func truncFactorial(x float64) (Value, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Value{}, ErrDomain
	}
	t := math.Trunc(x)
	if t < 0 {
		return Value{}, ErrDomain
	}
	if t > maxFactorialArg {
		return Value{}, ErrOverflow
	}
	return factorial(int64(t))
}

// parseDisplayFloat parses a display string as a float. Out-of-range values saturate.
func parseDisplayFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xXpP") {
		return 0, fmt.Errorf("could not convert %q to float", s)
	}
	s, ok := stripDigitSeparators(s)
	if !ok {
		return 0, fmt.Errorf("could not convert %q to float", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("could not convert %q to float", s)
	}
	return f, nil
}

// stripDigitSeparators removes underscores that sit between two digits, as in
// "1_000". Any other underscore makes the string invalid.
func stripDigitSeparators(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return s, false
		}
	}
	return strings.ReplaceAll(s, "_", ""), true
}

// Memory performs a memory register action on the display value. An empty display counts as 0
// for add and subtract; an unparsable one fails with ErrMemoryOperation and changes nothing.
func (c *Calculator) Memory(op MemoryOp) error {
	switch op {
	case MemAdd, MemSubtract:
		x := 0.0
		if c.display != "" {
			f, err := parseDisplayFloat(c.display)
			if err != nil {
				c.logf("%s on %q failed: %v", op, c.display, err)
				return fmt.Errorf("%w: %v", ErrMemoryOperation, err)
			}
			x = f
		}
		if op == MemAdd {
			c.memory += x
		} else {
			c.memory -= x
		}
	case MemRecall:
		c.setBuffer(formatRegister(c.memory))
	case MemClear:
		c.memory = 0
	default:
		return fmt.Errorf("%w: unknown action %d", ErrMemoryOperation, op)
	}
	return nil
}
