package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// symbols is a list of program labels, sorted by address.
type symbols []symbol

func (s symbols) forAddr(addr uint16) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s) && s[i].addr == addr; i++ {
		ss = append(ss, s[i])
	}
	return ss
}

func (s symbols) withLabelPrefix(p string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, p) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve returns the symbol named by label, or an unnamed symbol for a
// hexadecimal address.
func (s symbols) resolve(arg string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 16)
	if err != nil || v >= 0x1000 {
		return symbol{}, false
	}
	return symbol{addr: uint16(v)}, true
}

type symbol struct {
	addr  uint16
	label string
}

func (s symbol) String() string {
	if s.label == "" {
		return fmt.Sprintf("%.3x", s.addr)
	}
	return fmt.Sprintf("%s (%.3x)", s.label, s.addr)
}

// parseSymbols reads a symbol file: one "addr label" pair per line, with
// the address in hexadecimal. Blank lines and lines starting with '#' are
// ignored.
func parseSymbols(b []byte) (symbols, error) {
	var ss symbols
	sc := bufio.NewScanner(bytes.NewReader(b))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if len(f) != 2 {
			return nil, fmt.Errorf("line %d: want address and label, got %q", n, line)
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(f[0], "0x"), 16, 16)
		if err != nil || v >= 0x1000 {
			return nil, fmt.Errorf("line %d: invalid address %q", n, f[0])
		}
		ss = append(ss, symbol{addr: uint16(v), label: f[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}

// readSymbols reads the symbol file for a program, if there is one.
func readSymbols(file string) (symbols, error) {
	b, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return parseSymbols(b)
}
