package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-review/internal/resume"
	"github.com/jonathan/resume-review/internal/schemas"
	"github.com/jonathan/resume-review/internal/types"
)

// readValidated reads a JSON file and checks it against a bundled schema.
func readValidated(path, kind string, validate func([]byte) error) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s file: %w", kind, err)
	}
	if err := validate(data); err != nil {
		return nil, fmt.Errorf("invalid %s file %s: %w", kind, path, err)
	}
	return data, nil
}

func loadDocument(path string) (resume.Document, error) {
	data, err := readValidated(path, "resume", schemas.ValidateResume)
	if err != nil {
		return nil, err
	}
	return resume.Parse(data)
}

// loadPair loads the previous and current documents concurrently.
func loadPair(previousPath, currentPath string) (previous, current resume.Document, err error) {
	var g errgroup.Group
	g.Go(func() (err error) {
		previous, err = loadDocument(previousPath)
		return err
	})
	g.Go(func() (err error) {
		current, err = loadDocument(currentPath)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return previous, current, nil
}

func loadChanges(path string) ([]types.ChangeDescriptor, error) {
	if path == "" {
		return nil, nil
	}
	data, err := readValidated(path, "changes", schemas.ValidateChanges)
	if err != nil {
		return nil, err
	}
	var changes []types.ChangeDescriptor
	if err := json.Unmarshal(data, &changes); err != nil {
		return nil, fmt.Errorf("failed to parse changes JSON: %w", err)
	}
	return changes, nil
}

func loadDecisions(path string) (types.DecisionMap, error) {
	data, err := readValidated(path, "decisions", schemas.ValidateDecisions)
	if err != nil {
		return nil, err
	}
	var decisions types.DecisionMap
	if err := json.Unmarshal(data, &decisions); err != nil {
		return nil, fmt.Errorf("failed to parse decisions JSON: %w", err)
	}
	return decisions, nil
}

// writeTo runs write against the --out file, or stdout when path is empty.
func writeTo(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}
