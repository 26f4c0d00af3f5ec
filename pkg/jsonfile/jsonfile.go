// Package jsonfile reads and writes human-readable json artifacts.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Indent is the indentation used for every artifact.
const Indent = "    "

// Marshal encodes value using [Indent].
// Non-ASCII characters are not escaped.
func Marshal(value any) ([]byte, error) {
	var buffer bytes.Buffer
	if err := Encode(&buffer, value); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Encode is like Marshal, but writes to w.
func Encode(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", Indent)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// Write writes value to the file at path, creating parent directories as needed.
// The file is replaced atomically; a failed write leaves any previous file untouched.
func Write(path string, value any) error {
	data, err := Marshal(value)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(temp.Name())

	if _, err := temp.Write(data); err != nil {
		return errors.Join(fmt.Errorf("failed to write %q: %w", path, err), temp.Close())
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", path, err)
	}
	if err := os.Rename(temp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %q: %w", path, err)
	}
	return nil
}

// Read reads the json file at path into value.
func Read(path string, value any) error {
	data, err := os.ReadFile(path) // #nosec G304 -- explicit parameter
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("failed to decode %q: %w", path, err)
	}
	return nil
}

// Exists checks if a regular file exists at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
