package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/c8/vip"
)

// devMode runs file, reloading it whenever it changes.
// With debug set it also runs the debugger in the terminal.
func devMode(opts vip.Options, debug bool, file string) error {
	file = filepath.Clean(file)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(file)); err != nil {
		return err
	}
	tmp, err := os.MkdirTemp("", "c8-dev-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)
	romFile := filepath.Join(tmp, filepath.Base(file)+".ch8")
	symFile := file + ".sym"

	var (
		out  io.Writer = os.Stderr
		d    *debugger
		quit chan struct{} // closed when the debugger exits
	)
	opts.Dev = true
	if debug {
		d = newDebugger(opts.Theme)
		opts.State = d.StateFunc
		out = d.log
	}
	runner := vip.NewRunner(opts)
	if d != nil {
		d.run = runner
		quit = make(chan struct{})
		log.SetPrefix("")
		log.SetOutput(d.log)
		go func() {
			err := d.Run()
			log.SetOutput(os.Stderr)
			log.SetPrefix("c8: ")
			if err != nil {
				log.Printf("debug: %v", err)
			}
			close(quit)
		}()
	}

	romCh := make(chan []byte, 1)
	go func() {
		started := false
		run := time.After(1 * time.Millisecond)
		for {
			select {
			case <-run:
				log.Printf("dev: load %s", filepath.Base(file))
				rom, err := load(out, file, romFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				if d != nil {
					syms, err := readSymbols(symFile)
					if err != nil {
						log.Printf("dev: reading symbols: %v", err)
					}
					d.setSymbols(syms)
				}
				if !started {
					log.Printf("dev: start")
					romCh <- rom
					started = true
				} else {
					log.Printf("dev: reset")
					runner.Swap(rom)
				}
			case ev := <-watcher.Event:
				if (ev.Name == file || ev.Name == symFile) && !ev.IsAttrib() {
					run = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()
	err = runFirst(runner, romCh, quit)
	if d != nil {
		d.Stop()
	}
	return err
}

// devRunner is the part of vip.Runner that dev mode drives.
type devRunner interface {
	Run(rom []byte) error
	Debug(cmd string, addr uint16)
}

// runFirst runs the first program received from roms. If quit is closed
// before a program arrives it returns without running anything; if it is
// closed while the program runs, r is told to exit. A nil quit never closes.
func runFirst(r devRunner, roms <-chan []byte, quit <-chan struct{}) error {
	var rom []byte
	select {
	case rom = <-roms:
	case <-quit:
		return nil
	}
	if quit != nil {
		go func() {
			<-quit
			r.Debug("exit", 0)
		}()
	}
	return r.Run(rom)
}

// load returns the program in file, assembling it first if it is an Octo
// source file.
func load(out io.Writer, file, romFile string) ([]byte, error) {
	if filepath.Ext(file) != ".8o" {
		return os.ReadFile(file)
	}
	cmd := exec.Command("octo", file, romFile)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("octo: %v", err)
	}
	return os.ReadFile(romFile)
}
