package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned when no file is given and stdin is a terminal.
var ErrNoInput = errors.New("no input provided (stdin is a terminal); use -f or pipe JSON")

// FileReader decodes a T from the file named by its --file flag, or from
// stdin when the flag is empty or "-".
type FileReader[T any] struct {
	path string
}

// Flag returns the --file flag bound to the reader.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to a JSON file (\"-\" or empty reads stdin)",
		TakesFile:   true,
		Destination: &fr.path,
	}
}

// Read decodes one JSON value. stdin is only consulted when no file is set.
func (fr *FileReader[T]) Read(stdin io.Reader) (T, error) {
	var input T

	var r io.Reader
	switch fr.path {
	case "", "-":
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return input, ErrNoInput
		}
		r = stdin
	default:
		f, err := os.Open(fr.path)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&input); err != nil {
		if errors.Is(err, io.EOF) {
			return input, fmt.Errorf("decode JSON: empty input")
		}
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
