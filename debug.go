package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

// debugRunner is the part of vip.Runner the debugger drives.
type debugRunner interface {
	Debug(cmd string, addr uint16)
}

type debugger struct {
	run   debugRunner
	theme vip.Theme

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	done     chan struct{} // closed when the debugger stops
	stopOnce sync.Once

	mu      sync.Mutex
	syms    symbols
	brk     *symbol
	watches []watch
	last    chip8.Machine
}

type watch struct {
	symbol
	short bool
}

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

func newDebugger(theme vip.Theme) *debugger {
	d := &debugger{
		theme: theme,
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app:  tview.NewApplication(),
		done: make(chan struct{}),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 3, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case "b", "break", "w", "w2":
				for _, s := range d.symbols().withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := d.input.GetText()
		if line == "" {
			return
		}
		d.input.SetText("")
		d.command(line)
	})
	return d
}

func (d *debugger) Run() error {
	err := d.app.Run()
	d.stopOnce.Do(func() { close(d.done) })
	return err
}

// Stop stops the debugger. StateFunc returns at once from then on.
func (d *debugger) Stop() {
	d.stopOnce.Do(func() { close(d.done) })
	d.app.Stop()
}

// command executes one line typed at the debugger prompt.
func (d *debugger) command(line string) {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "exit", "q":
		d.Stop()
	case "p", "pause":
		d.run.Debug("pause", 0)
	case "c", "cont":
		d.run.Debug("cont", 0)
	case "s", "step":
		d.run.Debug("step", 0)
	case "b", "break":
		if arg == "" {
			d.run.Debug("clear", 0)
			d.mu.Lock()
			d.brk = nil
			d.mu.Unlock()
			log.Print("cleared break")
			return
		}
		s, ok := d.symbols().resolve(arg)
		if !ok {
			log.Printf("invalid address %q", arg)
			return
		}
		d.run.Debug("break", s.addr)
		d.mu.Lock()
		d.brk = &s
		d.mu.Unlock()
		log.Printf("set break %.3x", s.addr)
	case "w", "w2":
		s, ok := d.symbols().resolve(arg)
		if !ok {
			log.Printf("invalid address %q", arg)
			return
		}
		if cmd == "w2" && s.addr == chip8.MemSize-1 {
			log.Printf("cannot watch a word at %.3x", s.addr)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches, watch{symbol: s, short: cmd == "w2"})
		d.mu.Unlock()
		log.Printf("watching %.3x", s.addr)
	case "shot":
		if arg == "" {
			log.Print("usage: shot FILE")
			return
		}
		if err := d.screenshot(arg); err != nil {
			log.Printf("shot: %v", err)
			return
		}
		log.Printf("wrote %s", arg)
	default:
		log.Printf("unknown command %q", cmd)
	}
}

func (d *debugger) screenshot(file string) error {
	d.mu.Lock()
	fb := d.last.Screen
	d.mu.Unlock()
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	if err := vip.WritePNG(f, &fb, d.theme, 10); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (d *debugger) StateFunc(m *chip8.Machine, k vip.StateKind) {
	select {
	case <-d.done:
		return
	default:
	}
	d.mu.Lock()
	d.last = *m
	d.mu.Unlock()
	var (
		watch = d.watchContent(m)
		state string
	)
	if k != vip.ClearState && k != vip.QuietState {
		state = stateMsg(d.symbols(), m, k)
	}
	// QueueUpdateDraw waits for the application loop, which is gone
	// once the debugger stops.
	queued := make(chan struct{})
	go func() {
		defer close(queued)
		d.app.QueueUpdateDraw(func() { d.show(k, watch, state) })
	}()
	select {
	case <-queued:
	case <-d.done:
	}
}

func (d *debugger) show(k vip.StateKind, watch, state string) {
	switch k {
	case vip.ClearState:
		d.state.SetTextColor(tcell.ColorBlack)
		d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	case vip.BreakState:
		d.state.SetTextColor(tcell.ColorYellow)
		d.state.SetBackgroundColor(tcell.ColorDarkBlue)
	case vip.PauseState:
		d.state.SetTextColor(tcell.ColorWhite)
		d.state.SetBackgroundColor(tcell.ColorDarkBlue)
	case vip.HaltState:
		d.state.SetTextColor(tcell.ColorWhite)
		d.state.SetBackgroundColor(tcell.ColorDarkRed)
	}
	d.watch.SetText(watch)
	if k != vip.QuietState {
		d.state.SetText(state)
	}
}

func stateMsg(syms symbols, m *chip8.Machine, k vip.StateKind) string {
	var (
		op    = m.OpAt(m.PC)
		pcSym string
		sym   string
	)
	if s := syms.forAddr(m.PC); len(s) > 0 {
		pcSym = s[0].String() + " -> "
	}
	if addr, ok := m.OpAddr(m.PC); ok {
		switch s := syms.forAddr(addr); len(s) {
		case 0:
			sym = fmt.Sprintf("%.3x", addr)
		default:
			sym = s[0].String()
		}
	}
	kind := "       "
	switch k {
	case vip.BreakState:
		kind = "[break]"
	case vip.PauseState:
		kind = "[pause]"
	case vip.HaltState:
		kind = "[HALT!]"
	}
	var stack strings.Builder
	for i, a := range m.Stack[:m.SP] {
		if i > 0 {
			stack.WriteByte(' ')
		}
		fmt.Fprintf(&stack, "%.3x", a)
	}
	return fmt.Sprintf("%.3x %.4x %-16s %s %s%s\nstack: [%s]\n",
		m.PC, uint16(op), op, kind, pcSym, sym, stack.String())
}

func (d *debugger) watchContent(m *chip8.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	for i, v := range m.V {
		fmt.Fprintf(&b, "V%X %.2x", i, v)
		if i%4 == 3 {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
	}
	fmt.Fprintf(&b, "I %.3x PC %.3x SP %d\n", m.I, m.PC, m.SP)
	fmt.Fprintf(&b, "DT %.2x ST %.2x\n", m.Delay, m.Sound)
	if s := d.brk; s != nil {
		fmt.Fprintf(&b, "\n%s brk!\n", s)
	}
	for _, w := range d.watches {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%s ", w.symbol)
		if w.short {
			fmt.Fprintf(&b, "%.2x%.2x", m.Mem[w.addr], m.Mem[w.addr+1])
		} else {
			fmt.Fprintf(&b, "  %.2x", m.Mem[w.addr])
		}
	}
	return b.String()
}
