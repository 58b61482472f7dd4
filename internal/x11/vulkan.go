package x11

// VulkanExtensions returns the instance extensions this connection can
// create presentation surfaces with. Empty when the XCB interop
// library is unavailable, since the surface path is XCB only.
func (c *Conn) VulkanExtensions() []string {
	if h, _ := c.xcbHandle(); h != 0 {
		return []string{"VK_KHR_surface", "VK_KHR_xcb_surface"}
	}
	return nil
}

// VulkanSurfaceInfo returns the connection handle and window id a
// VkXcbSurfaceCreateInfoKHR needs.
func (c *Conn) VulkanSurfaceInfo(w *Window) (conn uintptr, window uint32, ok bool) {
	h, _ := c.xcbHandle()
	return h, uint32(w.id), h != 0
}

// VisualID returns the window's visual for the per-device
// presentation support query.
func (w *Window) VisualID() uint32 { return uint32(w.visual) }

// RootVisualID returns the screen's default visual, the one the
// whole-device presentation support query is made against.
func (c *Conn) RootVisualID() uint32 { return uint32(c.screen.RootVisual) }
