package mcpsrv

// WindowInfo describes one desktop window in tool results.
type WindowInfo struct {
	ID      uint32 `json:"id"`
	Title   string `json:"title"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Desktop int    `json:"desktop"`
	Active  bool   `json:"active"`
	Ours    bool   `json:"ours,omitempty"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	OursOnly bool `json:"ours_only,omitempty" jsonschema:"When true, list only windows created by this process"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
	Count   int          `json:"count"`
}

// GetWindowInput is the input for the get_window tool. Exactly one of
// id, title or active selects the window.
type GetWindowInput struct {
	ID     uint32 `json:"id,omitempty" jsonschema:"Window id to look up"`
	Title  string `json:"title,omitempty" jsonschema:"Title substring to search for, case-insensitive"`
	Active bool   `json:"active,omitempty" jsonschema:"When true, return the window holding input focus"`
}

// GetWindowOutput is the output for the get_window tool.
type GetWindowOutput struct {
	Window WindowInfo `json:"window"`
}

// MonitorInfo describes one monitor in tool results.
type MonitorInfo struct {
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Primary bool   `json:"primary"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []MonitorInfo `json:"monitors"`
	Count    int           `json:"count"`
}

// GetClipboardInput is the input for the get_clipboard tool.
type GetClipboardInput struct {
	Selection string `json:"selection,omitempty" jsonschema:"Selection to read: clipboard (default) or primary"`
}

// GetClipboardOutput is the output for the get_clipboard tool.
type GetClipboardOutput struct {
	Text string `json:"text"`
}

// SetClipboardInput is the input for the set_clipboard tool.
type SetClipboardInput struct {
	Text      string `json:"text" jsonschema:"required,Text to place on the selection"`
	Selection string `json:"selection,omitempty" jsonschema:"Selection to write: clipboard (default) or primary"`
}

// SetClipboardOutput is the output for the set_clipboard tool.
type SetClipboardOutput struct {
	Length int `json:"length"`
}
