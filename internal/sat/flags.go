package sat

// Variable status. Every allocated variable is in exactly one of these
// states. A variable is born active and never returns to active once it
// left that state.
type varStatus uint8

const (
	statusActive varStatus = iota
	statusFixed
	statusEliminated
	statusSubstituted
	statusPure
)

// Flags holds the per-variable state bits.
type Flags struct {
	status varStatus
}

func (f *Flags) Active() bool      { return f.status == statusActive }
func (f *Flags) Fixed() bool       { return f.status == statusFixed }
func (f *Flags) Eliminated() bool  { return f.status == statusEliminated }
func (f *Flags) Substituted() bool { return f.status == statusSubstituted }
func (f *Flags) Pure() bool        { return f.status == statusPure }

// Inactive reports whether the variable left the active state.
func (f *Flags) Inactive() bool { return f.status != statusActive }
