package auditlog

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/auditlog"
)

// ReadTail returns the last n well-formed entries of the log file at path, oldest
// first. Lines that do not parse are skipped. n <= 0 returns every entry.
func ReadTail(path string, n int) ([]auditlog.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var entries []auditlog.Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)
	for scanner.Scan() {
		e, err := auditlog.ParseLine(scanner.Text())
		if err != nil {
			continue
		}
		entries = append(entries, e)
		if n > 0 && len(entries) > n {
			entries = entries[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	return entries, nil
}
