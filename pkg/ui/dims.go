package ui

// Layout breakpoints for responsive design.
const (
	// BreakpointNarrow is the width below which the side panel is stacked
	// under the board instead of beside it.
	BreakpointNarrow = 80
)

// Box and panel dimension constraints.
const (
	// MinBoxWidth is the minimum width for bordered content boxes.
	MinBoxWidth = 20

	// MinContentHeight is the minimum height for scrollable content areas.
	MinContentHeight = 5

	// StatsPanelPadding is the padding subtracted from width for stats panels.
	StatsPanelPadding = 4
)

// SpaceXS is the smallest padding step, in characters.
const SpaceXS = 1
