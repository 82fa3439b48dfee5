// Package logtail reads the tail of the skylight log file.
//
// The interactive gallery owns the terminal and writes its log to a file;
// `skylight logs` uses this package to show the most recent entries. Lines
// are kept in a ring buffer, so memory stays proportional to the number of
// lines requested rather than the file size.
package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// levelTokens maps the level column written by the text formatter.
var levelTokens = map[string]log.Level{
	"DEBU": log.DebugLevel,
	"INFO": log.InfoLevel,
	"WARN": log.WarnLevel,
	"ERRO": log.ErrorLevel,
	"FATA": log.FatalLevel,
}

// Tail returns the last n lines of the log at path whose level is at least
// minLevel. Lines without a recognizable level (continuations, foreign output)
// are kept only when minLevel is debug. n <= 0 returns every matching line.
// A missing file yields no lines and no error.
func Tail(path string, n int, minLevel log.Level) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	var ring []string
	if n > 0 {
		ring = make([]string, 0, n)
	}
	start := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !keep(line, minLevel) {
			continue
		}
		switch {
		case n <= 0 || len(ring) < n:
			ring = append(ring, line)
		default:
			ring[start] = line
			start = (start + 1) % n
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	return append(ring[start:len(ring):len(ring)], ring[:start]...), nil
}

func keep(line string, minLevel log.Level) bool {
	lvl, ok := LineLevel(line)
	if !ok {
		return minLevel <= log.DebugLevel
	}
	return lvl >= minLevel
}

// LineLevel extracts the level from a formatted log line
// ("15:04:05.00 WARN fetch: message key=value").
func LineLevel(line string) (log.Level, bool) {
	fields := strings.Fields(line)
	for _, f := range fields[:min(2, len(fields))] {
		if lvl, ok := levelTokens[f]; ok {
			return lvl, true
		}
	}
	return 0, false
}
