// Command c8 runs CHIP-8 programs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

func main() {
	log.SetPrefix("c8: ")
	log.SetFlags(0)

	var (
		cliFlag    = flag.Bool("cli", false, "run in the terminal instead of a window")
		guiFlag    = flag.String("gui", "shiny", "window `toolkit`: shiny, ebiten, or none")
		devFlag    = flag.Bool("dev", false, "enable developer mode (reload the program when it changes)")
		debugFlag  = flag.Bool("debug", false, "enable debugger (implies -dev)")
		hzFlag     = flag.Int("hz", vip.DefaultHz, "execute `n` instructions per second")
		quirksFlag = flag.String("quirks", "chip8", "interpreter `quirks`: chip8, vip, schip, or a list of shift,jump,loadstore,clip,vf")
		scaleFlag  = flag.Int("scale", 10, "window pixels per CHIP-8 pixel")
		fgFlag     = flag.String("fg", "#fff", "`colour` of lit pixels")
		bgFlag     = flag.String("bg", "#000", "`colour` of unlit pixels")
		disFlag    = flag.Bool("dis", false, "print a disassembly of the program and exit")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program.ch8 | program.8o>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -dis <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}
	file := flag.Arg(0)

	if *disFlag {
		rom, err := os.ReadFile(file)
		if err != nil {
			log.Fatal(err)
		}
		syms, err := readSymbols(file + ".sym")
		if err != nil {
			log.Fatal(err)
		}
		if err := disassemble(os.Stdout, rom, syms); err != nil {
			log.Fatal(err)
		}
		return
	}

	opts, err := options(*cliFlag, *guiFlag, *quirksFlag, *fgFlag, *bgFlag)
	if err != nil {
		log.Fatal(err)
	}
	opts.Hz = *hzFlag
	opts.Scale = *scaleFlag

	if *devFlag || *debugFlag {
		if *debugFlag && opts.Frontend == vip.Terminal {
			log.Fatal("-debug cannot be combined with -cli")
		}
		if err := devMode(opts, *debugFlag, file); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err = run(file, opts)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

// options builds runner options from the command-line flags.
func options(cli bool, gui, quirks, fg, bg string) (vip.Options, error) {
	var (
		opts vip.Options
		err  error
	)
	if cli {
		opts.Frontend = vip.Terminal
	} else if opts.Frontend, err = vip.ParseFrontend(gui); err != nil {
		return opts, err
	} else if opts.Frontend == vip.Terminal {
		return opts, errors.New("use -cli for the terminal frontend")
	}
	if opts.Quirks, err = chip8.ParseQuirks(quirks); err != nil {
		return opts, err
	}
	if opts.Theme.On, err = vip.ParseColor(fg); err != nil {
		return opts, err
	}
	if opts.Theme.Off, err = vip.ParseColor(bg); err != nil {
		return opts, err
	}
	return opts, nil
}

func run(file string, opts vip.Options) error {
	tmp, err := os.MkdirTemp("", "c8-build-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	rom, err := load(os.Stderr, file, filepath.Join(tmp, filepath.Base(file)+".ch8"))
	if err != nil {
		return err
	}
	return vip.NewRunner(opts).Run(rom)
}
