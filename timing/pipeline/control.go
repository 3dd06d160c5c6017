package pipeline

// ControlState is the fetch/decode control state.
type ControlState int

const (
	// ControlNormal means fetch hands instructions to decode every cycle.
	ControlNormal ControlState = iota
	// ControlStalled means decode is waiting for an operand. Fetch keeps
	// re-reading the same PC without advancing it.
	ControlStalled
	// ControlRedirectPending means execute has redirected the PC. Fetch
	// skips one cycle before fetching from the new PC.
	ControlRedirectPending
)

// String returns the state name.
func (s ControlState) String() string {
	switch s {
	case ControlNormal:
		return "Normal"
	case ControlStalled:
		return "Stalled"
	case ControlRedirectPending:
		return "RedirectPending"
	default:
		return "Unknown"
	}
}

// Control tracks the fetch/decode state machine and whether fetch is
// enabled.
type Control struct {
	state        ControlState
	fetchEnabled bool
}

// NewControl returns a control unit in the reset state.
func NewControl() *Control {
	return &Control{state: ControlNormal, fetchEnabled: true}
}

// State returns the current state.
func (c *Control) State() ControlState {
	return c.state
}

// Stalled reports whether decode is holding an instruction it could not
// issue this cycle.
func (c *Control) Stalled() bool {
	return c.state == ControlStalled
}

// FetchEnabled reports whether fetch is active.
func (c *Control) FetchEnabled() bool {
	return c.fetchEnabled
}

// Stall records that decode could not issue.
func (c *Control) Stall() {
	if c.state == ControlNormal {
		c.state = ControlStalled
	}
}

// Issue records that decode issued its instruction.
func (c *Control) Issue() {
	if c.state == ControlStalled {
		c.state = ControlNormal
	}
}

// Redirect records a taken branch or jump. Any stall is dropped along with
// the flushed decode latch, and fetch is re-enabled.
func (c *Control) Redirect() {
	c.state = ControlRedirectPending
	c.fetchEnabled = true
}

// ConsumeRedirect reports whether fetch must skip this cycle, and returns
// the state to normal if so.
func (c *Control) ConsumeRedirect() bool {
	if c.state != ControlRedirectPending {
		return false
	}
	c.state = ControlNormal
	return true
}

// DisableFetch stops fetching after HALT has been handed to decode.
func (c *Control) DisableFetch() {
	c.fetchEnabled = false
}

// Reset returns the control unit to the reset state.
func (c *Control) Reset() {
	c.state = ControlNormal
	c.fetchEnabled = true
}
