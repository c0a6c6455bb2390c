package application

// Mode selects between simulating a run and actually writing to the
// remote store. It is threaded explicitly through every call that can
// mutate remote state; the dry-run mutator is the single chokepoint
// that guarantees no network write happens in ModeDryRun.
type Mode int

const (
	// ModeDryRun performs all logic except remote mutations and journal
	// updates, reporting intended actions instead.
	ModeDryRun Mode = iota
	// ModeLive writes to the remote store and commits the journal.
	ModeLive
)

// Live reports whether remote mutations are allowed.
func (m Mode) Live() bool {
	return m == ModeLive
}

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "dry-run"
}
