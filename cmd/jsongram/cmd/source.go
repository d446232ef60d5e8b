package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/reoring/jsongram"
	"github.com/reoring/jsongram/sample"
)

var (
	errNoSource   = errors.New("one of --sample or --shape is required")
	errTwoSources = errors.New("--sample and --shape are mutually exclusive")
)

// loadSource reads the value to compile from a sample document or a shape
// file. "-" reads from stdin.
func loadSource(in io.Reader, samplePath, shapePath string) (jsongram.Decodable, error) {
	switch {
	case samplePath != "" && shapePath != "":
		return nil, errTwoSources
	case samplePath != "":
		data, err := readInput(in, samplePath)
		if err != nil {
			return nil, err
		}
		v, err := sample.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", samplePath, err)
		}
		return v, nil
	case shapePath != "":
		data, err := readInput(in, shapePath)
		if err != nil {
			return nil, err
		}
		return jsongram.ParseShape(data)
	}
	return nil, errNoSource
}

func readInput(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
