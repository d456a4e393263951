package vulkan

import (
	"fmt"
	"sync"

	vk "github.com/goki/vulkan"
)

// VulkanContext holds the handles shared by every object created from one
// instance. Device is set once an adapter has been opened.
type VulkanContext struct {
	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	PhysicalDevice vk.PhysicalDevice
	Device         vk.Device
	// GraphicsQueueIndex is the family the device was opened with.
	GraphicsQueueIndex uint32

	locks *VulkanLockPool

	mu     sync.Mutex
	labels map[string]int
}

func newVulkanContext() *VulkanContext {
	return &VulkanContext{
		Allocator: nil,
		locks:     NewVulkanLockPool(),
		labels:    make(map[string]int),
	}
}

// object is embedded by every wrapped handle.
type object struct {
	label string
}

func (o *object) Label() string {
	return o.label
}

func (vc *VulkanContext) newObject(kind string) object {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.labels[kind]++
	return object{label: fmt.Sprintf("%s-%d", kind, vc.labels[kind])}
}
