package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/chazu/monty/manifest"
	"github.com/chazu/monty/pkg/bytecode"
	"github.com/chazu/monty/pkg/parser"
)

// imageExt is appended to the program name when no output is configured.
const imageExt = ".mbc"

// imageOutputPath picks where `monty -c` writes: -o, then [image] output,
// then the program path with its extension replaced.
func imageOutputPath(opts options, cfg *manifest.Manifest, path string) string {
	if opts.output != "" {
		return opts.output
	}
	if cfg.Image.Output != "" {
		if cfg.Path != "" && !filepath.IsAbs(cfg.Image.Output) {
			return filepath.Join(filepath.Dir(cfg.Path), cfg.Image.Output)
		}
		return cfg.Image.Output
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + imageExt
}

func isImage(br *bufio.Reader) bool {
	magic, _ := br.Peek(len(bytecode.ImageMagic))
	return bytecode.IsImage(magic)
}

func readImage(r io.Reader) (*bytecode.Chunk, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return bytecode.UnmarshalChunk(data)
}

// loadChunk assembles a source file, or decodes it if it is already an image.
func loadChunk(r io.Reader, path string) (*bytecode.Chunk, error) {
	br := bufio.NewReader(r)
	if isImage(br) {
		return readImage(br)
	}

	sc := parser.NewScanner(br)
	chunk := bytecode.Compile(filepath.Base(path), sc.Records())
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	return chunk, nil
}

// compileImage handles `monty -c`. Faulty lines are assembled too; they
// fault when the image runs, exactly as the source would.
func compileImage(r io.Reader, path, out string) error {
	chunk, err := loadChunk(r, path)
	if err != nil {
		return err
	}

	data, err := bytecode.MarshalChunk(chunk)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	log.Infof("wrote %s (%d instructions, %d bytes)", out, chunk.Len(), len(data))
	return nil
}

var (
	commentColor = color.New(color.Faint).SprintFunc()
	faultColor   = color.New(color.FgHiRed).SprintFunc()
)

// disassemble handles `monty -d`.
func disassemble(r io.Reader, path string, stdout io.Writer) error {
	chunk, err := loadChunk(r, path)
	if err != nil {
		return err
	}
	listing := chunk.Disassemble()
	if f, ok := stdout.(*os.File); ok && f == os.Stdout && !color.NoColor {
		listing = colorize(listing)
	}
	_, err = io.WriteString(stdout, listing)
	return err
}

// colorize dims header lines and highlights instructions that will fault.
func colorize(listing string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(listing, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, ";"):
			line = commentColor(line)
		case strings.Contains(line, "!"):
			line = faultColor(line)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}
