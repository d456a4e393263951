// Package vulkan implements the hal interfaces on top of goki/vulkan. The
// window surface comes from glfw.
package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

const validationLayerName = "VK_LAYER_KHRONOS_validation"

// Window is the part of a glfw window the instance needs. *glfw.Window
// satisfies it.
type Window interface {
	GetRequiredInstanceExtensions() []string
	CreateWindowSurface(instance interface{}, allocCallbacks unsafe.Pointer) (uintptr, error)
	GetFramebufferSize() (width, height int)
}

type Instance struct {
	context *VulkanContext
	surface *Surface
}

// NewInstance loads the Vulkan loader through glfw, creates the instance and
// the surface of window. With validation set, the Khronos validation layer
// is required and its reports are routed to the engine logger.
func NewInstance(appName string, validation bool, window Window) (*Instance, error) {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return nil, fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize vk: %w", err)
	}

	context := newVulkanContext()

	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Tinted"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, window.GetRequiredInstanceExtensions()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	if validation {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugReportExtensionName)
	}
	core.LogDebug("Required extensions: %v", requiredExtensions)

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	var layers []string
	if validation {
		core.LogInfo("Validation layers enabled. Enumerating...")
		found, err := hasInstanceLayer(validationLayerName)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("required validation layer is missing: %s", validationLayerName)
		}
		layers = []string{validationLayerName}
		core.LogInfo("All required validation layers are present.")
	}
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	if res := vk.CreateInstance(&createInfo, context.Allocator, &context.Instance); res != vk.Success {
		return nil, resultError("vkCreateInstance", res)
	}
	if err := vk.InitInstance(context.Instance); err != nil {
		vk.DestroyInstance(context.Instance, context.Allocator)
		return nil, err
	}
	core.LogInfo("Vulkan Instance created.")

	i := &Instance{context: context}

	if validation {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: dbgCallbackFunc,
		}
		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(context.Instance, &debugCreateInfo, context.Allocator, &dbg)); err != nil {
			i.Destroy()
			return nil, fmt.Errorf("vk.CreateDebugReportCallback failed with %w", err)
		}
		context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := window.CreateWindowSurface(context.Instance, nil)
	if err != nil {
		i.Destroy()
		return nil, fmt.Errorf("vulkan surface creation failed: %w", err)
	}
	context.Surface = vk.SurfaceFromPointer(surface)
	i.surface = newSurface(context, window)
	core.LogDebug("Vulkan surface created.")

	return i, nil
}

func hasInstanceLayer(name string) (bool, error) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false, resultError("vkEnumerateInstanceLayerProperties", res)
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return false, resultError("vkEnumerateInstanceLayerProperties", res)
	}
	for j := range available {
		available[j].Deref()
		if cString(available[j].LayerName[:]) == name {
			return true, nil
		}
	}
	return false, nil
}

func (i *Instance) Name() string {
	return "vulkan"
}

// Adapters enumerates the physical devices. Devices without a graphics
// queue are left out.
func (i *Instance) Adapters() ([]hal.Adapter, error) {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(i.context.Instance, &count, nil); res != vk.Success {
		return nil, resultError("vkEnumeratePhysicalDevices", res)
	}
	if count == 0 {
		return nil, nil
	}
	physicalDevices := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(i.context.Instance, &count, physicalDevices); res != vk.Success {
		return nil, resultError("vkEnumeratePhysicalDevices", res)
	}

	adapters := make([]hal.Adapter, 0, count)
	for _, pd := range physicalDevices {
		a := newAdapter(i.context, pd)
		if len(a.QueueFamilies()) == 0 {
			core.LogInfo("Device '%s' has no graphics queue, skipping.", a.info.Name)
			continue
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}

func (i *Instance) Surface() hal.Surface {
	return i.surface
}

// Destroy releases the surface, the debug callback and the instance. The
// device must have been destroyed first.
func (i *Instance) Destroy() {
	c := i.context
	if c.Surface != vk.NullSurface {
		vk.DestroySurface(c.Instance, c.Surface, c.Allocator)
		c.Surface = vk.NullSurface
	}
	if c.debugMessenger != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(c.Instance, c.debugMessenger, c.Allocator)
		c.debugMessenger = vk.NullDebugReportCallback
	}
	if c.Instance != nil {
		vk.DestroyInstance(c.Instance, c.Allocator)
		c.Instance = nil
	}
	core.LogInfo("Vulkan Instance destroyed.")
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("ERROR: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("PERFORMANCE WARNING: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportDebugBit) != 0:
		core.LogDebug("DEBUG: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("INFORMATION: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
