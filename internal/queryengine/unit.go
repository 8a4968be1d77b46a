package queryengine

import "sync"

// UnitContext is a per-compilation-unit handle: a stable id, the root
// file path, and the loaded prelude configuration (set post-load by
// internal/compiler's GetAST; typed any here so queryengine has no dependency on
// the prelude package). Unit contexts hold a non-owning reference to
// the global context; sub-queries spawned by a worker inherit the
// caller's unit context unless a job explicitly switches it.
type UnitContext struct {
	ID       string
	RootFile string
	Global   *GlobalContext
	Prelude  any

	// known files touched while compiling this unit, guarded by a
	// dedicated mutex because multiple workers may register files
	// concurrently.
	knownMu    sync.Mutex
	knownFiles []string
}

// AddKnownFile registers path as belonging to this unit, once.
func (u *UnitContext) AddKnownFile(path string) {
	u.knownMu.Lock()
	defer u.knownMu.Unlock()
	for _, f := range u.knownFiles {
		if f == path {
			return
		}
	}
	u.knownFiles = append(u.knownFiles, path)
}

// KnownFiles returns a snapshot of the unit's registered files in
// registration order.
func (u *UnitContext) KnownFiles() []string {
	u.knownMu.Lock()
	defer u.knownMu.Unlock()
	out := make([]string, len(u.knownFiles))
	copy(out, u.knownFiles)
	return out
}
