package hal

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 256)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

// emit queues ev, dropping it when the queue is full.
func (k *hostKeyboard) emit(ev KeyEvent) {
	select {
	case k.ch <- ev:
	default:
	}
}

// typeLine queues s as text input followed by Enter. It blocks while the
// queue is full, so no typed text is lost.
func (k *hostKeyboard) typeLine(s string) {
	for _, r := range s {
		k.ch <- KeyEvent{Press: true, Rune: r}
	}
	k.ch <- KeyEvent{Code: KeyEnter, Press: true}
	k.ch <- KeyEvent{Code: KeyEnter, Press: false}
}

type hostPointer struct {
	ch chan PointerEvent
}

func newHostPointer() *hostPointer {
	return &hostPointer{ch: make(chan PointerEvent, 64)}
}

func (p *hostPointer) Events() <-chan PointerEvent { return p.ch }

func (p *hostPointer) emit(ev PointerEvent) {
	select {
	case p.ch <- ev:
	default:
	}
}
