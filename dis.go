package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/nf/c8/chip8"
)

// disassemble writes a listing of rom as it would be loaded into memory.
func disassemble(w io.Writer, rom []byte, syms symbols) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < len(rom); i += 2 {
		addr := uint16(chip8.ProgramAddr + i)
		for _, s := range syms.forAddr(addr) {
			fmt.Fprintf(bw, "%s:\n", s.label)
		}
		if i+1 == len(rom) {
			fmt.Fprintf(bw, "%.3x  %.2x    DB 0x%.2X\n", addr, rom[i], rom[i])
			break
		}
		op := chip8.Op(uint16(rom[i])<<8 | uint16(rom[i+1]))
		fmt.Fprintf(bw, "%.3x  %.4x  %s\n", addr, uint16(op), op)
	}
	return bw.Flush()
}
