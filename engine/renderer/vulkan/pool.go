package vulkan

import "sync"

type LockGroup string

const (
	QueueManagement       LockGroup = "queue_management"
	DescriptorManagement  LockGroup = "descriptor_management"
	CommandPoolManagement LockGroup = "command_pool_management"
	SwapchainManagement   LockGroup = "swapchain_management"
	PipelineManagement    LockGroup = "pipeline_management"
)

// VulkanLockPool hands out one mutex per group of externally synchronized
// Vulkan objects.
type VulkanLockPool struct {
	mu    sync.Mutex
	locks map[LockGroup]*sync.Mutex
}

func NewVulkanLockPool() *VulkanLockPool {
	return &VulkanLockPool{
		locks: make(map[LockGroup]*sync.Mutex),
	}
}

func (vs *VulkanLockPool) lock(group LockGroup) *sync.Mutex {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	l, ok := vs.locks[group]
	if !ok {
		l = &sync.Mutex{}
		vs.locks[group] = l
	}
	return l
}

// SafeCall runs fn while holding the mutex of group.
func (vs *VulkanLockPool) SafeCall(group LockGroup, fn func() error) error {
	l := vs.lock(group)
	l.Lock()
	defer l.Unlock()

	return fn()
}
