package driver

import "github.com/aretw0/feedstream/pkg/ports"

// viewHolder tracks the slot a leaf is bound to.
type viewHolder struct {
	slot ports.ViewSlot
}

func (v *viewHolder) attach(slot ports.ViewSlot) {
	v.slot = slot
}

func (v *viewHolder) Unbind() {
	v.slot = nil
}

func (v *viewHolder) IsBound() bool {
	return v.slot != nil
}
