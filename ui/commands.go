package ui

import (
	"fmt"
	"strings"

	"sparkcalc/calc"
)

var helpLines = []string{
	"SparkCalc help",
	"",
	"Keys",
	"  Enter/=: evaluate",
	"  Backspace: delete",
	"  Esc: clear",
	"  arrows: move focus",
	"  Tab: press focused key",
	"  F1: voice  F2: export",
	"  F3: toggle theme",
	"  ?: toggle help",
	"",
	"Commands",
	"  :sin :cos :tan (degrees)",
	"  :log10 :ln :sqrt",
	"  :fact :exp",
	"  :m+ :m- :mr :mc",
	"  :ans :clear",
	"  :export [path]",
	"  :dark :light :theme",
	"  :voice :history :help",
}

// runCommand executes a ':' command line (without the colon).
func (t *Task) runCommand(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	if fn, ok := calc.ParseFunc(cmd); ok {
		t.applyFunction(fn)
		return
	}

	switch cmd {
	case "m+":
		t.memory(calc.MemAdd)
	case "m-":
		t.memory(calc.MemSubtract)
	case "mr":
		t.memory(calc.MemRecall)
	case "mc":
		t.memory(calc.MemClear)
	case "ans":
		t.calc.InsertAnswer()
	case "clear", "c":
		t.calc.Clear()
	case "export":
		t.exportHistory(strings.Join(args, " "))
	case "dark":
		t.SetTheme(DarkTheme.Name)
	case "light":
		t.SetTheme(LightTheme.Name)
	case "theme":
		if len(args) == 1 {
			if _, ok := ThemeByName(args[0]); !ok {
				t.setMessage(fmt.Sprintf("unknown theme %q", args[0]))
				return
			}
			t.SetTheme(args[0])
			return
		}
		t.toggleTheme()
	case "voice":
		t.listen()
	case "history":
		h := t.calc.History()
		for _, e := range h {
			t.println(e)
		}
		t.setMessage(fmt.Sprintf("History: %d entries", len(h)))
	case "help":
		t.showHelp = !t.showHelp
		if t.showHelp && t.console != nil {
			for _, l := range helpLines {
				t.println(l)
			}
			t.showHelp = false
		}
	default:
		t.setMessage("Unknown command")
	}
}
