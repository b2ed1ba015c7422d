// Monty CLI - the main entry point for running monty programs
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	"github.com/chazu/monty/manifest"
	"github.com/chazu/monty/pkg/bytecode"
	"github.com/chazu/monty/pkg/parser"
	"github.com/chazu/monty/server"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("monty.cli")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	verbose    bool
	trace      bool
	configPath string
	compile    bool
	output     string
	disasm     bool
	lsp        bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts options

	fs := flag.NewFlagSet("monty", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging to stderr (or [log] path)")
	fs.BoolVar(&opts.trace, "trace", false, "Log every executed instruction")
	fs.StringVar(&opts.configPath, "config", "", "Path to monty.toml (default: search upwards from the program)")
	fs.BoolVar(&opts.compile, "c", false, "Assemble the program to an image instead of running it")
	fs.StringVar(&opts.output, "o", "", "Image output path (with -c)")
	fs.BoolVar(&opts.disasm, "d", false, "Print a disassembly instead of running")
	fs.BoolVar(&opts.lsp, "lsp", false, "Start the language server on stdio")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "USAGE: monty file\n\n")
		fmt.Fprintf(stderr, "Runs a monty bytecode file (source or compiled image).\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  monty prog.m              # Run a program\n")
		fmt.Fprintf(stderr, "  monty -c prog.m           # Assemble to prog.mbc\n")
		fmt.Fprintf(stderr, "  monty -d prog.mbc         # List an image\n")
		fmt.Fprintf(stderr, "  monty -lsp                # Language server for editors\n")
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if opts.lsp {
		return runLSP(opts, stderr)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "USAGE: monty file")
		return 1
	}
	path := fs.Arg(0)

	cfg, err := loadConfig(opts.configPath, filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	configureLogging(cfg, opts)

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error: Can't open file %s\n", path)
		return 1
	}
	defer f.Close()

	switch {
	case opts.compile:
		err = compileImage(f, path, imageOutputPath(opts, cfg, path))
	case opts.disasm:
		err = disassemble(f, path, stdout)
	default:
		err = execute(f, cfg, opts, stdout)
	}
	return report(err, stderr)
}

// report prints err the way the run ends and returns the exit code.
func report(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if f, ok := bytecode.AsFault(err); ok {
		fmt.Fprintln(stderr, f.Error())
		return 1
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

// loadConfig reads an explicit config file, or searches upwards from dir.
func loadConfig(explicit, dir string) (*manifest.Manifest, error) {
	if explicit != "" {
		return manifest.LoadFile(explicit)
	}
	m, err := manifest.FindAndLoad(dir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return manifest.Default(), nil
	}
	return m, nil
}

func configureLogging(cfg *manifest.Manifest, opts options) {
	verbosity := cfg.Log.Verbosity
	if opts.verbose && verbosity < 2 {
		verbosity = 2
	}
	if (opts.trace || cfg.Run.Trace) && verbosity < 1 {
		verbosity = 1
	}
	commonlog.Configure(verbosity, cfg.LogPath())
	if cfg.Path != "" {
		log.Debugf("using config %s", cfg.Path)
	}
}

// execute runs a source file or an image.
func execute(r io.Reader, cfg *manifest.Manifest, opts options, stdout io.Writer) error {
	vm := bytecode.NewVM(stdout,
		bytecode.WithMode(cfg.Mode()),
		bytecode.WithTrace(opts.trace || cfg.Run.Trace),
	)
	defer vm.Close()

	br := bufio.NewReader(r)
	if isImage(br) {
		chunk, err := readImage(br)
		if err != nil {
			return err
		}
		log.Debugf("running image %q (%d instructions)", chunk.Name, chunk.Len())
		return vm.RunChunk(chunk)
	}

	sc := parser.NewScanner(br)
	if err := vm.Run(sc.Records()); err != nil {
		return err
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read program: %w", err)
	}
	log.Debugf("executed %d instructions", vm.Executed)
	return nil
}

func runLSP(opts options, stderr io.Writer) int {
	cfg, err := loadConfig(opts.configPath, ".")
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	// stdout is the protocol channel; only log when a file is configured.
	verbosity := -4
	if cfg.LogPath() != nil {
		verbosity = cfg.Log.Verbosity
		if opts.verbose && verbosity < 2 {
			verbosity = 2
		}
	}
	commonlog.Configure(verbosity, cfg.LogPath())

	if err := server.NewLSP(cfg.Mode()).Run(); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
