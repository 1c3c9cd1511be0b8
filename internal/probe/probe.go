// Package probe implements liveness probing for an externally tracked PID.
// "Alive" means the OS accepts a no-op signal delivery to the pid; when a
// recorded start time is available it is cross-checked against the live
// process to reject recycled PIDs.
package probe

// Prober probes whether a pid refers to a live process.
type Prober interface {
	// Alive reports whether pid currently exists as a live process.
	Alive(pid int) bool
	// AliveAt is Alive with a PID-reuse guard: when startUnix > 0 and the
	// live process started at a different time, the pid is considered dead.
	AliveAt(pid int, startUnix int64) bool
	// StartUnix returns the process start time as Unix seconds, 0 if unknown.
	StartUnix(pid int) int64
}

// OS is the production Prober backed by the operating system.
type OS struct{}

func (OS) Alive(pid int) bool { return pidAlive(pid) }

func (OS) AliveAt(pid int, startUnix int64) bool {
	if startUnix > 0 {
		if cur := getProcStartUnix(pid); cur > 0 && cur != startUnix {
			return false // pid reused by an unrelated process
		}
	}
	return pidAlive(pid)
}

func (OS) StartUnix(pid int) int64 { return getProcStartUnix(pid) }
