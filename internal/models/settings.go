package models

// GridSize selects the launcher grid density. Each size maps to a column
// count and a maximum number of icons per page.
type GridSize string

const (
	GridSmall  GridSize = "small"
	GridMedium GridSize = "medium"
	GridLarge  GridSize = "large"
)

// Valid reports whether the value is one of the known grid sizes.
func (g GridSize) Valid() bool {
	switch g {
	case GridSmall, GridMedium, GridLarge:
		return true
	}
	return false
}

// Settings holds the display configuration mutated as a whole object.
type Settings struct {
	GridSize     GridSize `json:"gridSize"`
	Gradient     string   `json:"gradient"`
	ShowLabels   bool     `json:"showLabels"`
	OpenInNewTab bool     `json:"openInNewTab"`
}

// DefaultSettings returns the settings used for fresh installs and as the
// fallback when an imported snapshot omits them.
func DefaultSettings() Settings {
	return Settings{
		GridSize:     GridMedium,
		Gradient:     "aurora",
		ShowLabels:   true,
		OpenInNewTab: true,
	}
}
