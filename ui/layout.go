package ui

import "sparkcalc/calc"

type rect struct {
	x, y, w, h int16
}

func (r rect) contains(x, y int) bool {
	return x >= int(r.x) && x < int(r.x)+int(r.w) && y >= int(r.y) && y < int(r.y)+int(r.h)
}

type action uint8

const (
	actPress action = iota
	actFunc
	actEval
	actClear
	actBackspace
	actAnswer
	actMemory
	actExport
	actVoice
	actDark
	actLight
	actHelp
)

type button struct {
	label string
	act   action
	text  string
	fn    calc.Func
	mem   calc.MemoryOp
}

func press(s string) button             { return button{label: s, act: actPress, text: s} }
func shortcut(fn calc.Func) button      { return button{label: string(fn), act: actFunc, fn: fn} }
func memory(op calc.MemoryOp) button    { return button{label: op.String(), act: actMemory, mem: op} }
func control(l string, a action) button { return button{label: l, act: a} }

const (
	gridCols = 5
	gridRows = 8
)

// buttons is the keypad in row-major order.
var buttons = [gridRows * gridCols]button{
	shortcut(calc.FuncSin), shortcut(calc.FuncCos), shortcut(calc.FuncTan), shortcut(calc.FuncLog10), shortcut(calc.FuncLn),
	shortcut(calc.FuncSqrt), shortcut(calc.FuncFact), shortcut(calc.FuncExp), press("("), press(")"),
	press("7"), press("8"), press("9"), press("/"), press("^"),
	press("4"), press("5"), press("6"), press("*"), press("%"),
	press("1"), press("2"), press("3"), press("-"), control("Ans", actAnswer),
	press("0"), press("."), control("C", actClear), press("+"), control("=", actEval),
	memory(calc.MemAdd), memory(calc.MemSubtract), memory(calc.MemRecall), memory(calc.MemClear), control("<-", actBackspace),
	control("Hist", actExport), control("Voice", actVoice), control("Dark", actDark), control("Light", actLight), control("?", actHelp),
}

// buttonIndex finds a keypad button by label.
func buttonIndex(label string) int {
	for i, b := range buttons {
		if b.label == label {
			return i
		}
	}
	return -1
}

// isDigitKey reports whether b enters part of a number.
func (b button) isDigitKey() bool {
	return b.act == actPress && len(b.text) == 1 && (b.text[0] >= '0' && b.text[0] <= '9' || b.text[0] == '.')
}

// layout places the panels of the window. All values are in framebuffer pixels.
type layout struct {
	display rect
	keys    [gridRows * gridCols]rect
	history rect
	status  rect
}

const (
	margin = 6
	gap    = 4
)

func newLayout(width, height, lineHeight int16) layout {
	var l layout
	innerW := width - 2*margin

	l.display = rect{x: margin, y: margin, w: innerW, h: 2*lineHeight + 8}

	btnW := (innerW - (gridCols-1)*gap) / gridCols
	btnH := lineHeight + 10
	gridY := l.display.y + l.display.h + margin
	for row := 0; row < gridRows; row++ {
		for col := 0; col < gridCols; col++ {
			l.keys[row*gridCols+col] = rect{
				x: margin + int16(col)*(btnW+gap),
				y: gridY + int16(row)*(btnH+gap),
				w: btnW,
				h: btnH,
			}
		}
	}
	gridBottom := gridY + gridRows*btnH + (gridRows-1)*gap

	l.status = rect{x: 0, y: height - lineHeight - 4, w: width, h: lineHeight + 4}
	histY := gridBottom + margin
	histH := l.status.y - margin/2 - histY
	if histH < 0 {
		histH = 0
	}
	l.history = rect{x: margin, y: histY, w: innerW, h: histH}
	return l
}

// keyAt returns the button under (x, y), or -1.
func (l *layout) keyAt(x, y int) int {
	for i, r := range l.keys {
		if r.contains(x, y) {
			return i
		}
	}
	return -1
}
