package render

import (
	"encoding/json"

	"github.com/matzehuels/corkboard/pkg/board"
	"github.com/matzehuels/corkboard/pkg/cache"
	"github.com/matzehuels/corkboard/pkg/stack"
)

// Snapshot is a frozen view of a board.
type Snapshot struct {
	Board      string           `json:"board"`
	Dimensions board.Dimensions `json:"dimensions"`
	ItemSize   board.Size       `json:"item_size"`

	// Items are in paint order, lowest first.
	Items  []board.Item `json:"items"`
	Stacks []StackLabel `json:"stacks,omitempty"`

	// MaxTilt is the rotation bound of stacked items in degrees.
	MaxTilt float64 `json:"max_tilt"`
}

// StackLabel is a stack as drawn: its name, center and members.
type StackLabel struct {
	ID      string         `json:"id"`
	Name    string         `json:"name,omitempty"`
	Center  board.Position `json:"center"`
	Members []int64        `json:"members"`
}

// NewStackLabel copies s with its resolved center.
func NewStackLabel(s stack.Stack, center board.Position) StackLabel {
	return StackLabel{ID: s.ID, Name: s.Name, Center: center, Members: s.Members}
}

// Hash identifies the snapshot content. Item z-order is part of the hash
// through slice order.
func (s Snapshot) Hash() string {
	data, _ := json.Marshal(s)
	return cache.Hash(data)
}

// stacked maps every stacked item id to its stack.
func (s Snapshot) stacked() map[int64]string {
	out := make(map[int64]string)
	for _, st := range s.Stacks {
		for _, id := range st.Members {
			out[id] = st.ID
		}
	}
	return out
}
