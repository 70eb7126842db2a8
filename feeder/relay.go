package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
)

// relay copies lines from its sources to out, one Write per line. A maxLine
// of zero means lines may be any length.
type relay struct {
	out     io.Writer
	maxLine int
	logger  *log.Logger

	buf   []byte
	stats []phaseStats
}

type phaseStats struct {
	source string
	lines  int64
	bytes  uint64
}

type fileNotFoundError struct {
	path string
	err  error
}

func (e *fileNotFoundError) Error() string {
	return fmt.Sprintf("File not found: %v", e.path)
}

func (e *fileNotFoundError) Unwrap() error {
	return e.err
}

func newRelay(out io.Writer, maxLine int, logger *log.Logger) *relay {
	return &relay{
		out:     out,
		maxLine: maxLine,
		logger:  logger,
	}
}

func (r *relay) feedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &fileNotFoundError{path: path, err: err}
		}
		return err
	}
	defer f.Close()

	return r.feed(path, f)
}

// feed relays every line of in until end-of-stream. A line missing its
// trailing newline still gets one; nothing else about it changes.
func (r *relay) feed(source string, in io.Reader) error {
	r.logger.Printf("relaying %v", source)

	r.stats = append(r.stats, phaseStats{source: source})
	st := &r.stats[len(r.stats)-1]

	br := bufio.NewReader(in)

	for {
		line, err := r.readLine(br)
		if err != nil && err != io.EOF {
			return fmt.Errorf("%v: line %d: %w", source, st.lines+1, err)
		}

		if len(line) > 0 {
			n, werr := r.writeLine(line)
			if werr != nil {
				return werr
			}

			st.lines++
			st.bytes += uint64(n)
		}

		if err == io.EOF {
			break
		}
	}

	r.logger.Printf("%v done after %d lines", source, st.lines)

	return nil
}

// readLine returns the next line including its '\n', if any. Lines of any
// length are returned whole unless maxLine is set.
func (r *relay) readLine(br *bufio.Reader) ([]byte, error) {
	r.buf = r.buf[:0]
	for {
		frag, err := br.ReadSlice('\n')
		r.buf = append(r.buf, frag...)

		if r.maxLine > 0 && len(bytes.TrimSuffix(r.buf, []byte{'\n'})) > r.maxLine {
			return nil, bufio.ErrTooLong
		}

		if err != bufio.ErrBufferFull {
			return r.buf, err
		}
	}
}

// writeLine writes line with exactly one trailing '\n' in a single Write.
func (r *relay) writeLine(line []byte) (int, error) {
	if !bytes.HasSuffix(line, []byte{'\n'}) {
		line = append(line, '\n')
		r.buf = line
	}

	return r.out.Write(line)
}
