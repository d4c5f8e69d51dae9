package adapters

import (
	"bufio"
	"compress/gzip"
	"context"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

const maxLineBytes = 16 * 1024 * 1024

type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g gzipFile) Close() error {
	_ = g.Reader.Close()
	return g.file.Close()
}

// openInput opens path for reading, transparently decompressing files
// ending in .gz.
func openInput(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("input file not found: " + path).
			WithCause(err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return file, nil
	}
	gz, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read gzipped input: " + path).
			WithCause(err)
	}
	return gzipFile{Reader: gz, file: file}, nil
}

// scanLines calls fn for every line of reader with its 1-based number.
// The context is checked between lines.
func scanLines(ctx context.Context, reader io.Reader, fn func(lineNo int, line string) error) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("read canceled").
				WithCause(err)
		}
		if err := fn(lineNo, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read input").
			WithCause(err)
	}
	return nil
}

// splitInputs splits a comma separated list of paths.
func splitInputs(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
