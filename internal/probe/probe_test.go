//go:build !windows

package probe

import (
	"os"
	"os/exec"
	"testing"
	"time"
)

func TestAliveSelf(t *testing.T) {
	var p OS
	if !p.Alive(os.Getpid()) {
		t.Fatalf("own pid should be alive")
	}
	if p.Alive(0) || p.Alive(-1) {
		t.Fatalf("non-positive pids must never be alive")
	}
}

func TestAliveDeadChild(t *testing.T) {
	cmd := exec.Command("true")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	pid := cmd.Process.Pid
	_ = cmd.Wait()
	var p OS
	// Reaped child must not be reported alive.
	if p.Alive(pid) {
		t.Fatalf("reaped pid %d reported alive", pid)
	}
}

func TestStartUnixSelf(t *testing.T) {
	var p OS
	st := p.StartUnix(os.Getpid())
	if st <= 0 {
		t.Skipf("start time unavailable on this platform")
	}
	if st > time.Now().Unix() {
		t.Fatalf("start time %d in the future", st)
	}
	if !p.AliveAt(os.Getpid(), st) {
		t.Fatalf("AliveAt with matching start time should be true")
	}
}

func TestAliveAtRejectsReusedPID(t *testing.T) {
	var p OS
	st := p.StartUnix(os.Getpid())
	if st <= 0 {
		t.Skipf("start time unavailable on this platform")
	}
	// Same pid, wrong start time: treated as a recycled pid.
	if p.AliveAt(os.Getpid(), st+12345) {
		t.Fatalf("AliveAt must reject mismatched start time")
	}
}
