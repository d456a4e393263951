package renderer

import (
	"fmt"
	"runtime"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

// DeviceContext owns the logical device and the queue every other GPU object
// is created from. It must outlive all of them; the registry enforces that.
type DeviceContext struct {
	adapter     hal.Adapter
	device      hal.Device
	queue       hal.Queue
	family      int
	memoryTypes []hal.MemoryType
	limits      hal.Limits

	resources map[uuid.UUID]string
}

// NewDeviceContext opens a device with one queue on the best adapter that can
// render and present to surface.
func NewDeviceContext(instance hal.Instance, surface hal.Surface) (*DeviceContext, error) {
	adapters, err := instance.Adapters()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate adapters: %w", err)
	}
	adapter, family, err := SelectAdapter(adapters, surface)
	if err != nil {
		return nil, err
	}

	info := adapter.Info()
	core.LogInfo("Selected adapter %s (%s, driver %s)", info.Name, info.Type, info.Driver)

	device, err := adapter.Open(family, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to open device on %s: %w", info.Name, err)
	}

	return &DeviceContext{
		adapter:     adapter,
		device:      device,
		queue:       device.Queue(0),
		family:      family,
		memoryTypes: adapter.MemoryTypes(),
		limits:      adapter.Limits(),
		resources:   make(map[uuid.UUID]string),
	}, nil
}

// SelectAdapter scores every adapter that has a graphics queue family able to
// present to surface and returns the best one with that family. Discrete GPUs
// win over everything else.
func SelectAdapter(adapters []hal.Adapter, surface hal.Surface) (hal.Adapter, int, error) {
	var (
		best       hal.Adapter
		bestFamily = -1
		bestScore  = -1
	)
	for _, adapter := range adapters {
		family := -1
		for _, qf := range adapter.QueueFamilies() {
			if qf.Graphics && qf.Count > 0 && adapter.SupportsSurface(qf.Index, surface) {
				family = qf.Index
				break
			}
		}
		if family < 0 {
			core.LogDebug("Adapter %s skipped: no graphics queue can present to the surface", adapter.Info().Name)
			continue
		}

		score := 1
		info := adapter.Info()
		switch {
		case info.Discrete || info.Type == hal.DeviceTypeDiscreteGPU:
			score = 100
		case info.Type == hal.DeviceTypeIntegratedGPU:
			score = 50
		case runtime.GOOS == "darwin":
			// MoltenVK reports some GPUs as "other"
			score = 10
		}
		if score > bestScore {
			best, bestFamily, bestScore = adapter, family, score
		}
	}
	if best == nil {
		return nil, -1, core.ErrNoSuitableAdapter
	}
	return best, bestFamily, nil
}

func (c *DeviceContext) Device() hal.Device {
	return c.device
}

func (c *DeviceContext) Queue() hal.Queue {
	return c.queue
}

func (c *DeviceContext) QueueFamily() int {
	return c.family
}

func (c *DeviceContext) Adapter() hal.Adapter {
	return c.adapter
}

func (c *DeviceContext) MemoryTypes() []hal.MemoryType {
	return c.memoryTypes
}

func (c *DeviceContext) Limits() hal.Limits {
	return c.limits
}

// FindMemoryType returns the first memory type allowed by typeMask whose
// properties contain props.
func (c *DeviceContext) FindMemoryType(typeMask uint32, props hal.MemoryProperty) (hal.MemoryTypeID, error) {
	for i, t := range c.memoryTypes {
		if typeMask&(1<<uint(i)) != 0 && t.Properties.Contains(props) {
			return hal.MemoryTypeID(i), nil
		}
	}
	return 0, fmt.Errorf("mask %#x with properties %#x: %w", typeMask, props, core.ErrNoMemoryType)
}

func (c *DeviceContext) register(kind string) uuid.UUID {
	id := uuid.New()
	c.resources[id] = kind
	return id
}

func (c *DeviceContext) unregister(id uuid.UUID) {
	delete(c.resources, id)
}

// LiveResources returns how many registered resources have not been
// destroyed yet.
func (c *DeviceContext) LiveResources() int {
	return len(c.resources)
}

// Destroy destroys the device. It refuses to while any resource created from
// the context is still alive.
func (c *DeviceContext) Destroy() error {
	if c.device == nil {
		return nil
	}
	if len(c.resources) > 0 {
		for id, kind := range c.resources {
			core.LogError("%s %s still alive at device destruction", kind, id)
		}
		return fmt.Errorf("%d resources: %w", len(c.resources), core.ErrResourcesAlive)
	}
	if err := c.device.WaitIdle(); err != nil {
		core.LogWarn("WaitIdle before device destruction failed: %s", err)
	}
	c.device.Destroy()
	c.device = nil
	core.LogDebug("Device destroyed")
	return nil
}
