package domain

import "time"

// Tag is a label attached to tickets for filtering.
type Tag struct {
	ID        int64
	Name      string
	Colour    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultTags is the stock tag set installed by the seed command.
var DefaultTags = []Tag{
	{Name: "urgent", Colour: "#ff0000"},
	{Name: "bug", Colour: "#ff6b6b"},
	{Name: "feature", Colour: "#4ecdc4"},
	{Name: "question", Colour: "#ffe66d"},
	{Name: "support", Colour: "#95e1d3"},
}
