// Package tipc models the TIPC tabular configuration format: an ordered
// sequence of colon-delimited key:value lines with fields addressed by
// line index.
package tipc

import (
	"fmt"
	"os"
	"strings"
)

// well-known line indices in a TIPC train config (0-based).
const (
	lineModelName   = 1
	lineTrainerList = 14
)

// File is a TIPC config file read fully into memory. Lines are never
// mutated after load.
type File struct {
	path  string
	lines []string
}

// Load reads the config file at path into an ordered line sequence.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from CLI argument
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	return &File{path: path, lines: lines}, nil
}

// Path returns the file path the config was loaded from.
func (f *File) Path() string { return f.path }

// Len returns the number of lines in the config.
func (f *File) Len() int { return len(f.lines) }

// KeyAt returns the field before the first colon on the given line,
// trimmed. Used for diagnostics only.
func (f *File) KeyAt(idx int) (string, error) {
	fields, err := f.fieldsAt(idx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(fields[0]), nil
}

// ValueAt returns the second colon-delimited field of the given line,
// trimmed. This matches the original func_parser_value helper: split on
// ":" and take the element at index 1.
func (f *File) ValueAt(idx int) (string, error) {
	fields, err := f.fieldsAt(idx)
	if err != nil {
		return "", err
	}
	if len(fields) < 2 {
		return "", fmt.Errorf("config %s line %d: no value field in %q", f.path, idx, f.lines[idx])
	}
	return strings.TrimSpace(fields[1]), nil
}

func (f *File) fieldsAt(idx int) ([]string, error) {
	if idx < 0 || idx >= len(f.lines) {
		return nil, fmt.Errorf("config %s: line %d out of range (have %d lines)", f.path, idx, len(f.lines))
	}
	return strings.Split(f.lines[idx], ":"), nil
}

// Record is the typed view of the fields the preparer consumes.
// TrainerList is parsed for parity with the original config contract but
// nothing downstream consumes it.
type Record struct {
	ModelName   string
	TrainerList string
}

// Record extracts the model name (line 1) and trainer list (line 14).
// Both lines must exist and carry a value field.
func (f *File) Record() (Record, error) {
	modelName, err := f.ValueAt(lineModelName)
	if err != nil {
		return Record{}, fmt.Errorf("model name: %w", err)
	}
	trainerList, err := f.ValueAt(lineTrainerList)
	if err != nil {
		return Record{}, fmt.Errorf("trainer list: %w", err)
	}
	return Record{ModelName: modelName, TrainerList: trainerList}, nil
}
