package glwin

import (
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/1broseidon/glwin/internal/dylib"
	"github.com/1broseidon/glwin/internal/werr"
)

var vulkanLibraryNames = []string{"libvulkan.so.1", "libvulkan.so"}

// vulkan lazily loads the Vulkan loader library and resolves instance
// procs through vkGetInstanceProcAddr. Everything else Vulkan is the
// application's business; the platform only contributes surfaces.
type vulkan struct {
	probed              bool
	lib                 dylib.Module
	getInstanceProcAddr func(instance uintptr, name string) uintptr
}

func (v *vulkan) load(loader *dylib.Loader, logger *slog.Logger) bool {
	if v.probed {
		return v.getInstanceProcAddr != nil
	}
	v.probed = true

	lib, name, err := loader.Open(vulkanLibraryNames...)
	if err != nil {
		logger.Debug("vulkan loader unavailable", "error", err)
		return false
	}
	addr, err := loader.Resolve(lib, "vkGetInstanceProcAddr")
	if err != nil || addr == 0 {
		loader.Close(lib)
		logger.Debug("vulkan loader lacks vkGetInstanceProcAddr", "library", name)
		return false
	}
	v.lib = lib
	purego.RegisterFunc(&v.getInstanceProcAddr, addr)
	logger.Debug("vulkan loader ready", "library", name)
	return true
}

func (v *vulkan) unload(loader *dylib.Loader) {
	if v.lib != 0 {
		loader.Close(v.lib)
		v.lib = 0
		v.getInstanceProcAddr = nil
	}
}

// VulkanSupported reports whether a Vulkan loader with
// vkGetInstanceProcAddr is available. It says nothing about devices or
// presentation; use RequiredInstanceExtensions for the surface path.
func (p *Platform) VulkanSupported() bool {
	return p.vk.load(p.loader, p.logger)
}

// RequiredInstanceExtensions returns the instance extensions a Vulkan
// application must enable to create presentation surfaces for windows
// of this platform.
func (p *Platform) RequiredInstanceExtensions() ([]string, error) {
	if !p.VulkanSupported() {
		return nil, reportError(werr.New(werr.ApiUnavailable, "the Vulkan loader is not available"))
	}
	if p.x == nil {
		return nil, reportError(werr.New(werr.ApiUnavailable, "the headless backend cannot present"))
	}
	exts := p.x.VulkanExtensions()
	if exts == nil {
		return nil, reportError(werr.New(werr.ApiUnavailable, "surface creation needs the XCB interop connection"))
	}
	return exts, nil
}

// instanceProc resolves an instance-level entry point, insisting the
// surface path is available first.
func (p *Platform) instanceProc(instance uintptr, name string) (uintptr, error) {
	if _, err := p.RequiredInstanceExtensions(); err != nil {
		return 0, err
	}
	proc := p.vk.getInstanceProcAddr(instance, name)
	if proc == 0 {
		return 0, reportError(werr.New(werr.ApiUnavailable, "%s is not available", name))
	}
	return proc, nil
}

// PhysicalDevicePresentationSupport reports whether the queue family
// of the given VkPhysicalDevice can present to this platform's
// windows. instance must have been created with the extensions named
// by RequiredInstanceExtensions.
func (p *Platform) PhysicalDevicePresentationSupport(instance, device uintptr, queueFamily uint32) (bool, error) {
	proc, err := p.instanceProc(instance, "vkGetPhysicalDeviceXcbPresentationSupportKHR")
	if err != nil {
		return false, err
	}
	supported, _, _ := purego.SyscallN(proc,
		device,
		uintptr(queueFamily),
		p.x.XCBConnection(),
		uintptr(p.x.RootVisualID()))
	return supported != 0, nil
}

// vkXcbSurfaceCreateInfo mirrors VkXcbSurfaceCreateInfoKHR.
type vkXcbSurfaceCreateInfo struct {
	sType      uint32
	_          uint32
	pNext      uintptr
	flags      uint32
	_          uint32
	connection uintptr
	window     uint32
	_          uint32
}

const vkStructureTypeXcbSurfaceCreateInfo = 1000005000

// CreateVulkanSurface creates a VkSurfaceKHR presenting to the window
// and returns its handle. instance must have been created with the
// extensions named by RequiredInstanceExtensions; allocator is an
// optional VkAllocationCallbacks pointer and may be zero.
func (w *Window) CreateVulkanSurface(instance, allocator uintptr) (uint64, error) {
	p := w.p
	proc, err := p.instanceProc(instance, "vkCreateXcbSurfaceKHR")
	if err != nil {
		return 0, err
	}
	conn, window, ok := p.x.VulkanSurfaceInfo(w.x)
	if !ok {
		return 0, reportError(werr.New(werr.ApiUnavailable, "surface creation needs the XCB interop connection"))
	}

	info := vkXcbSurfaceCreateInfo{
		sType:      vkStructureTypeXcbSurfaceCreateInfo,
		connection: conn,
		window:     window,
	}
	var surface uint64
	result, _, _ := purego.SyscallN(proc,
		instance,
		uintptr(unsafe.Pointer(&info)),
		allocator,
		uintptr(unsafe.Pointer(&surface)))
	runtime.KeepAlive(&info)
	if int32(result) != 0 {
		return 0, reportError(werr.New(werr.PlatformError, "failed to create window surface: VkResult %d", int32(result)))
	}
	return surface, nil
}
