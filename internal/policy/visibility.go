// Package policy decides what a viewer may see of a ticket thread.
package policy

import "github.com/deskops/support-desk/internal/domain"

// Viewer is the authenticated caller a response is shaped for. A nil *Viewer
// is anonymous.
type Viewer struct {
	UserID int64
}

// IsInternal reports whether the viewer holds the internal agent capability.
// Every authenticated agent does; there is no external role yet.
func (v *Viewer) IsInternal() bool {
	return v != nil && v.UserID > 0
}

// CanViewUpdate reports whether the update may be shown to the viewer.
func CanViewUpdate(update *domain.TicketUpdate, viewer *Viewer) bool {
	if update == nil {
		return false
	}
	if !update.IsInternalNote() {
		return true
	}
	return viewer.IsInternal()
}

// VisibleUpdates drops the updates the viewer may not see, keeping order.
func VisibleUpdates(updates []domain.TicketUpdate, viewer *Viewer) []domain.TicketUpdate {
	visible := make([]domain.TicketUpdate, 0, len(updates))
	for i := range updates {
		if CanViewUpdate(&updates[i], viewer) {
			visible = append(visible, updates[i])
		}
	}
	return visible
}
