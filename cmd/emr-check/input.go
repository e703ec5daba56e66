package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/afmhelaluddin77/EMR/internal/emr"
	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
)

// maxLine bounds a single NDJSON record.
const maxLine = 16 << 20

type payload struct {
	source string
	data   []byte
}

// readPayloads reads one payload per file, or one per non-blank line in
// NDJSON mode. No paths, or "-", means standard input.
func readPayloads(stdin io.Reader, paths []string, ndjson bool) ([]payload, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	var out []payload
	for _, path := range paths {
		data, err := readInput(stdin, path)
		if err != nil {
			return nil, err
		}
		if !ndjson {
			out = append(out, payload{source: path, data: data})
			continue
		}
		lines, err := splitLines(path, data)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}
	return out, nil
}

func splitLines(path string, data []byte) ([]payload, error) {
	var out []payload
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		out = append(out, payload{
			source: fmt.Sprintf("%s:%d", path, n),
			data:   bytes.Clone(line),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func readJSONFile(stdin io.Reader, path string, v any) error {
	data, err := readInput(stdin, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// readExtensions accepts a single extension object or an array of them.
func readExtensions(stdin io.Reader, path string) ([]emr.AppointmentExtension, error) {
	data, err := readInput(stdin, path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var exts []emr.AppointmentExtension
		if err := json.Unmarshal(data, &exts); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return exts, nil
	}
	var ext emr.AppointmentExtension
	if err := json.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return []emr.AppointmentExtension{ext}, nil
}

// readAppointmentIDs returns the ids of the Appointments in an NDJSON file.
func readAppointmentIDs(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	lines, err := splitLines(path, data)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		var appt r4.Appointment
		if err := json.Unmarshal(l.data, &appt); err != nil {
			return nil, fmt.Errorf("decode %s: %w", l.source, err)
		}
		if appt.ID != "" {
			ids = append(ids, appt.ID)
		}
	}
	return ids, nil
}
