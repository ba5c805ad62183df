package model

import "fmt"

// Status workflow status of a kegiatan
type Status string

const (
	StatusDiajukan         Status = "diajukan"
	StatusDisetujuiPPK     Status = "disetujui-ppk"
	StatusDisetujuiKabalai Status = "disetujui-kabalai"
	StatusDikembalikan     Status = "dikembalikan"
	StatusSelesai          Status = "selesai"
	StatusDibatalkan       Status = "dibatalkan"
)

// transitions legal state transitions; missing entries are rejected
var transitions = map[Status][]Status{
	StatusDiajukan:         {StatusDisetujuiPPK, StatusDisetujuiKabalai, StatusDikembalikan, StatusDibatalkan},
	StatusDisetujuiPPK:     {StatusDisetujuiKabalai, StatusDikembalikan, StatusSelesai, StatusDibatalkan},
	StatusDisetujuiKabalai: {StatusDikembalikan, StatusSelesai, StatusDibatalkan},
	StatusDikembalikan:     {StatusDiajukan, StatusDibatalkan},
}

// AllStatuses every known status value
func AllStatuses() []Status {
	return []Status{
		StatusDiajukan,
		StatusDisetujuiPPK,
		StatusDisetujuiKabalai,
		StatusDikembalikan,
		StatusSelesai,
		StatusDibatalkan,
	}
}

// IsValid reports whether s is a known status value
func (s Status) IsValid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal terminal statuses accept no further transition
func (s Status) IsTerminal() bool {
	return s == StatusSelesai || s == StatusDibatalkan
}

// CanTransitionTo reports whether the transition s -> to is in the table
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns a descriptive error for an illegal transition
func ValidateTransition(from, to Status) error {
	if !from.IsValid() {
		return fmt.Errorf("unknown status %q", from)
	}
	if !to.IsValid() {
		return fmt.Errorf("unknown status %q", to)
	}
	if from.IsTerminal() {
		return fmt.Errorf("status %q is terminal", from)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("transition %q -> %q is not allowed", from, to)
	}
	return nil
}

// NonTerminalStatuses statuses still eligible for mutation
func NonTerminalStatuses() []Status {
	var out []Status
	for _, s := range AllStatuses() {
		if !s.IsTerminal() {
			out = append(out, s)
		}
	}
	return out
}
