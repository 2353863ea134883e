package discovery

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Select asks the user to pick one of endpoints. A single endpoint is chosen
// without prompting. Cancelling ctx abandons the prompt and returns ctx.Err().
func Select(ctx context.Context, in io.Reader, out io.Writer, endpoints []Endpoint) (Endpoint, error) {
	switch len(endpoints) {
	case 0:
		return Endpoint{}, ErrNoEndpoints
	case 1:
		return endpoints[0], nil
	}

	var b strings.Builder
	b.WriteString("Available radios:\n")
	for i, ep := range endpoints {
		if ep.Description != "" {
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, ep.Name, ep.Description)
		} else {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, ep.Name)
		}
	}
	fmt.Fprintf(&b, "Select a radio [1-%d]: ", len(endpoints))
	if _, err := io.WriteString(out, b.String()); err != nil {
		return Endpoint{}, err
	}

	line, err := readLineContext(ctx, in)
	if ctx.Err() != nil {
		return Endpoint{}, ctx.Err()
	}
	if err != nil && (err != io.EOF || line == "") {
		return Endpoint{}, fmt.Errorf("read selection: %w", err)
	}

	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || choice < 1 || choice > len(endpoints) {
		return Endpoint{}, fmt.Errorf("invalid selection %q: enter a number between 1 and %d",
			strings.TrimSpace(line), len(endpoints))
	}
	return endpoints[choice-1], nil
}

type lineResult struct {
	line string
	err  error
}

// readLineContext waits for readLine or ctx. On cancellation the reader goroutine
// stays blocked in Read until input arrives or in is closed.
func readLineContext(ctx context.Context, in io.Reader) (string, error) {
	res := make(chan lineResult, 1)
	go func() {
		line, err := readLine(in)
		res <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-res:
		return r.line, r.err
	}
}

// readLine reads up to and including the next newline one byte at a time, so
// input after the selection is left for the caller.
func readLine(r io.Reader) (string, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return string(line), nil
			}
			line = append(line, buf[0])
		}
		if err != nil {
			return string(line), err
		}
	}
}
