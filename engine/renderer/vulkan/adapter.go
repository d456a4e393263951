package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type Adapter struct {
	context  *VulkanContext
	handle   vk.PhysicalDevice
	info     hal.AdapterInfo
	limits   hal.Limits
	memory   []hal.MemoryType
	families []hal.QueueFamily
}

func newAdapter(context *VulkanContext, pd vk.PhysicalDevice) *Adapter {
	properties := vk.PhysicalDeviceProperties{}
	vk.GetPhysicalDeviceProperties(pd, &properties)
	properties.Deref()
	properties.Limits.Deref()

	memory := vk.PhysicalDeviceMemoryProperties{}
	vk.GetPhysicalDeviceMemoryProperties(pd, &memory)
	memory.Deref()

	a := &Adapter{
		context: context,
		handle:  pd,
		info: hal.AdapterInfo{
			Name: cString(properties.DeviceName[:]),
			Type: halDeviceType(properties.DeviceType),
			Driver: fmt.Sprintf("%d.%d.%d",
				vk.Version(properties.DriverVersion).Major(),
				vk.Version(properties.DriverVersion).Minor(),
				vk.Version(properties.DriverVersion).Patch()),
			Discrete: properties.DeviceType == vk.PhysicalDeviceTypeDiscreteGpu,
		},
		limits: hal.Limits{
			OptimalBufferCopyPitchAlignment: uint64(properties.Limits.OptimalBufferCopyRowPitchAlignment),
			NonCoherentAtomSize:             uint64(properties.Limits.NonCoherentAtomSize),
			MaxPushConstantsSize:            properties.Limits.MaxPushConstantsSize,
		},
	}

	for i := uint32(0); i < memory.MemoryTypeCount; i++ {
		memory.MemoryTypes[i].Deref()
		a.memory = append(a.memory, hal.MemoryType{
			Properties: halMemoryProperty(memory.MemoryTypes[i].PropertyFlags),
			HeapIndex:  memory.MemoryTypes[i].HeapIndex,
		})
	}

	var queueFamilyCount uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &queueFamilyCount, queueFamilies)
	for i := range queueFamilies {
		queueFamilies[i].Deref()
		flags := vk.QueueFlagBits(queueFamilies[i].QueueFlags)
		if flags&vk.QueueGraphicsBit == 0 {
			continue
		}
		a.families = append(a.families, hal.QueueFamily{
			Index:    i,
			Graphics: true,
			// graphics queues always accept transfer work
			Transfer: true,
			Count:    queueFamilies[i].QueueCount,
		})
	}

	core.LogDebug("Found device '%s' (%s), driver %s, %d memory types",
		a.info.Name, a.info.Type, a.info.Driver, len(a.memory))
	return a
}

func (a *Adapter) Info() hal.AdapterInfo {
	return a.info
}

// QueueFamilies lists the families with graphics support.
func (a *Adapter) QueueFamilies() []hal.QueueFamily {
	return append([]hal.QueueFamily(nil), a.families...)
}

func (a *Adapter) MemoryTypes() []hal.MemoryType {
	return append([]hal.MemoryType(nil), a.memory...)
}

func (a *Adapter) Limits() hal.Limits {
	return a.limits
}

func (a *Adapter) SupportsSurface(family int, surface hal.Surface) bool {
	s, ok := surface.(*Surface)
	if !ok {
		return false
	}
	var supportsPresent vk.Bool32 = vk.False
	if res := vk.GetPhysicalDeviceSurfaceSupport(a.handle, uint32(family), s.context.Surface, &supportsPresent); res != vk.Success {
		core.LogWarn("vkGetPhysicalDeviceSurfaceSupport failed with %s", VulkanResultString(res, false))
		return false
	}
	return supportsPresent == vk.True
}

// Open creates the logical device with the swapchain extension, and the
// portability subset when the driver exposes it.
func (a *Adapter) Open(family int, queueCount uint32) (hal.Device, error) {
	core.LogInfo("Creating logical device...")

	priorities := make([]float32, queueCount)
	for i := range priorities {
		priorities[i] = 1.0
	}
	queueCreateInfos := []vk.DeviceQueueCreateInfo{{
		SType:            vk.StructureTypeDeviceQueueCreateInfo,
		QueueFamilyIndex: uint32(family),
		QueueCount:       queueCount,
		PQueuePriorities: priorities,
	}}

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	portability, err := a.hasExtension("VK_KHR_portability_subset")
	if err != nil {
		return nil, err
	}
	if portability {
		core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueCreateInfos)),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	var handle vk.Device
	if res := vk.CreateDevice(a.handle, &deviceCreateInfo, a.context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateDevice", res)
	}
	a.context.PhysicalDevice = a.handle
	a.context.Device = handle
	a.context.GraphicsQueueIndex = uint32(family)
	core.LogInfo("Logical device created.")

	d := &Device{context: a.context, adapter: a}
	for i := uint32(0); i < queueCount; i++ {
		var q vk.Queue
		vk.GetDeviceQueue(handle, uint32(family), i, &q)
		d.queues = append(d.queues, &Queue{context: a.context, handle: q})
	}
	core.LogInfo("Queues obtained.")
	return d, nil
}

func (a *Adapter) hasExtension(name string) (bool, error) {
	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(a.handle, "", &count, nil); res != vk.Success {
		return false, resultError("vkEnumerateDeviceExtensionProperties", res)
	}
	if count == 0 {
		return false, nil
	}
	available := make([]vk.ExtensionProperties, count)
	if res := vk.EnumerateDeviceExtensionProperties(a.handle, "", &count, available); res != vk.Success {
		return false, resultError("vkEnumerateDeviceExtensionProperties", res)
	}
	for i := range available {
		available[i].Deref()
		if cString(available[i].ExtensionName[:]) == name {
			return true, nil
		}
	}
	return false, nil
}
