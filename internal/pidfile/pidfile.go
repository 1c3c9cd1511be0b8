// Package pidfile persists the pid of the managed service between
// invocations. The file holds the pid on the first line and a JSON meta line
// with the process start time, which lets the liveness probe reject recycled
// PIDs. Files containing only a pid (written by other tools) are accepted.
package pidfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Meta is the optional second line of a pid file.
type Meta struct {
	StartUnix int64 `json:"start_unix"`
}

// Write creates the pid file exclusively. A pre-existing file means another
// invocation won the race and the caller must re-check liveness.
func Write(path string, pid int, meta Meta) error {
	if pid <= 0 {
		return fmt.Errorf("pidfile: refusing to record pid %d", pid)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(strconv.Itoa(pid) + "\n"); err != nil {
		return err
	}
	if meta.StartUnix > 0 {
		b, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if _, err := f.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Read parses a pid file. The meta line is optional.
func Read(path string) (int, Meta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, Meta{}, err
	}
	pidLine, rest, _ := strings.Cut(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(pidLine))
	if err != nil {
		return 0, Meta{}, fmt.Errorf("pidfile: invalid pid in %s: %w", path, err)
	}
	var meta Meta
	rest = strings.TrimSpace(rest)
	if rest != "" {
		// Keep the pid even when the meta line cannot be parsed.
		_ = json.Unmarshal([]byte(rest), &meta)
	}
	return pid, meta, nil
}

// Remove deletes the pid file. Missing files are not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
