// SPDX-License-Identifier: MPL-2.0

package wrapper

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// ResolveExecutable locates an executable against the supplied PATH value
// rather than the launching process's own environment, so closed-mode
// resolution finds exactly what the child will see. Executables given with a
// path component (absolute or relative) are checked directly.
func ResolveExecutable(executable, pathValue string) (string, error) {
	if strings.ContainsAny(executable, `/\`) || filepath.IsAbs(executable) {
		if !isExecutable(executable) {
			return "", &ExecutableNotFoundError{Name: executable}
		}
		abs, err := filepath.Abs(executable)
		if err != nil {
			return "", fmt.Errorf("failed to resolve executable path %q: %w", executable, err)
		}
		return abs, nil
	}

	for _, dir := range filepath.SplitList(pathValue) {
		if dir == "" {
			continue
		}
		for _, name := range candidateNames(executable) {
			full := filepath.Join(dir, name)
			if isExecutable(full) {
				return full, nil
			}
		}
	}
	return "", &ExecutableNotFoundError{Name: executable}
}

// candidateNames expands a bare executable name with the platform's
// executable extensions. On non-Windows systems the name is used as-is.
func candidateNames(name string) []string {
	if runtime.GOOS != "windows" {
		return []string{name}
	}
	if filepath.Ext(name) != "" {
		return []string{name}
	}
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	names := []string{name}
	for _, ext := range strings.Split(pathext, ";") {
		if ext == "" {
			continue
		}
		names = append(names, name+strings.ToLower(ext))
	}
	return names
}

func isExecutable(path string) bool {
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return st.Mode()&0o111 != 0
}

// drainLines reads pipe to EOF, handling each complete line: append to the
// capture buffer when buf is non-nil, copy to stream when non-nil, and
// invoke onLine when non-nil. Lines are delivered strictly in read order.
// Line length is unbounded: a child may emit megabytes without a newline and
// the drain must keep consuming or the child blocks on a full pipe.
func drainLines(pipe io.Reader, wg *sync.WaitGroup, buf *strings.Builder, stream io.Writer, onLine func(string)) {
	defer wg.Done()

	emit := func(line string) {
		if buf != nil {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		if stream != nil {
			fmt.Fprintln(stream, line)
		}
		if onLine != nil {
			onLine(line)
		}
	}

	reader := bufio.NewReaderSize(pipe, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			emit(strings.TrimRight(line, "\r\n"))
		}
		if err != nil {
			return
		}
	}
}

// lineWriter adapts the per-line fan-out (capture, stream, callback) to an
// io.Writer, for execution paths that produce output through a writer
// instead of a pipe. Flush emits any trailing line without a newline.
type lineWriter struct {
	buf     *strings.Builder
	stream  io.Writer
	onLine  func(string)
	pending bytes.Buffer
}

func (l *lineWriter) Write(p []byte) (int, error) {
	l.pending.Write(p)
	for {
		idx := bytes.IndexByte(l.pending.Bytes(), '\n')
		if idx < 0 {
			break
		}
		raw := string(l.pending.Next(idx + 1))
		l.emit(strings.TrimRight(raw, "\r\n"))
	}
	return len(p), nil
}

// Flush emits a trailing partial line, if any.
func (l *lineWriter) Flush() {
	if l.pending.Len() == 0 {
		return
	}
	l.emit(strings.TrimRight(l.pending.String(), "\r\n"))
	l.pending.Reset()
}

func (l *lineWriter) emit(line string) {
	if l.buf != nil {
		l.buf.WriteString(line)
		l.buf.WriteByte('\n')
	}
	if l.stream != nil {
		fmt.Fprintln(l.stream, line)
	}
	if l.onLine != nil {
		l.onLine(line)
	}
}
