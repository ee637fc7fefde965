package main

import (
	"bytes"
	"testing"
	"time"
)

type devCall struct {
	cmd  string
	addr uint16
}

// stubRunner runs until it is told to exit.
type stubRunner struct {
	ran   chan []byte
	exit  chan struct{}
	calls []devCall
}

func newStubRunner() *stubRunner {
	return &stubRunner{ran: make(chan []byte, 1), exit: make(chan struct{})}
}

func (r *stubRunner) Run(rom []byte) error {
	r.ran <- rom
	<-r.exit
	return nil
}

func (r *stubRunner) Debug(cmd string, addr uint16) {
	r.calls = append(r.calls, devCall{cmd, addr})
	if cmd == "exit" {
		close(r.exit)
	}
}

func waitRun(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runFirst returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runFirst did not return")
	}
}

func TestRunFirstQuitBeforeLoad(t *testing.T) {
	r := newStubRunner()
	quit := make(chan struct{})
	close(quit)
	done := make(chan error, 1)
	go func() { done <- runFirst(r, make(chan []byte), quit) }()
	waitRun(t, done)
	select {
	case <-r.ran:
		t.Error("program ran after quit")
	default:
	}
	if len(r.calls) != 0 {
		t.Errorf("got debug calls %v, want none", r.calls)
	}
}

func TestRunFirstQuitWhileRunning(t *testing.T) {
	r := newStubRunner()
	roms := make(chan []byte, 1)
	roms <- []byte{0x12, 0x00}
	quit := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- runFirst(r, roms, quit) }()

	select {
	case rom := <-r.ran:
		if !bytes.Equal(rom, []byte{0x12, 0x00}) {
			t.Errorf("ran %x", rom)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("program did not start")
	}
	close(quit)
	waitRun(t, done)
	if len(r.calls) != 1 || r.calls[0] != (devCall{"exit", 0}) {
		t.Errorf("got debug calls %v, want exit", r.calls)
	}
}
