// Package headless is a hal backend that runs entirely in host memory. It
// executes copies and layout transitions for real, completes submissions
// after a configurable latency, and records every call and every misuse so
// tests can assert on ordering.
package headless

import (
	"time"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type Config struct {
	AdapterName  string
	MemoryTypes  []hal.MemoryType
	Limits       hal.Limits
	Formats      []hal.Format
	Capabilities hal.SurfaceCapabilities
	// SubmitLatency delays the completion of every submission. Zero completes
	// work inside Submit.
	SubmitLatency time.Duration
}

func DefaultConfig() Config {
	return Config{
		AdapterName: "Headless Adapter",
		MemoryTypes: []hal.MemoryType{
			{Properties: hal.MemoryDeviceLocal, HeapIndex: 0},
			{Properties: hal.MemoryHostVisible | hal.MemoryHostCoherent, HeapIndex: 1},
			{Properties: hal.MemoryDeviceLocal | hal.MemoryHostVisible | hal.MemoryHostCoherent, HeapIndex: 0},
		},
		Limits: hal.Limits{
			OptimalBufferCopyPitchAlignment: 256,
			NonCoherentAtomSize:             64,
			MaxPushConstantsSize:            128,
		},
		Formats: []hal.Format{hal.FormatBGRA8Unorm, hal.FormatBGRA8Srgb},
		Capabilities: hal.SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  8,
			CurrentExtent:  hal.Extent2D{Width: 1024, Height: 768},
			MinImageExtent: hal.Extent2D{Width: 1, Height: 1},
			MaxImageExtent: hal.Extent2D{Width: 4096, Height: 4096},
			PresentModes:   []hal.PresentMode{hal.PresentModeFifo, hal.PresentModeMailbox},
		},
	}
}

type Instance struct {
	w       *world
	adapter *Adapter
	surface *Surface
}

func NewInstance(cfg Config) *Instance {
	w := newWorld(cfg)
	i := &Instance{w: w}
	i.adapter = &Adapter{w: w}
	i.surface = newSurface(w)
	return i
}

func (i *Instance) Name() string {
	return "headless"
}

func (i *Instance) Adapters() ([]hal.Adapter, error) {
	return []hal.Adapter{i.adapter}, nil
}

func (i *Instance) Surface() hal.Surface {
	return i.surface
}

// HeadlessSurface exposes the fault-injection controls of the surface.
func (i *Instance) HeadlessSurface() *Surface {
	return i.surface
}

func (i *Instance) Destroy() {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	i.w.record("DestroyInstance")
}

type Adapter struct {
	w *world
}

func (a *Adapter) Info() hal.AdapterInfo {
	return hal.AdapterInfo{
		Name:     a.w.cfg.AdapterName,
		Type:     hal.DeviceTypeCPU,
		Driver:   "1.0.0",
		Discrete: false,
	}
}

func (a *Adapter) QueueFamilies() []hal.QueueFamily {
	return []hal.QueueFamily{{Index: 0, Graphics: true, Transfer: true, Count: 1}}
}

func (a *Adapter) MemoryTypes() []hal.MemoryType {
	return append([]hal.MemoryType(nil), a.w.cfg.MemoryTypes...)
}

func (a *Adapter) Limits() hal.Limits {
	return a.w.cfg.Limits
}

func (a *Adapter) SupportsSurface(family int, surface hal.Surface) bool {
	return family == 0 && surface != nil
}

func (a *Adapter) Open(family int, queueCount uint32) (hal.Device, error) {
	a.w.mu.Lock()
	defer a.w.mu.Unlock()
	if family != 0 || queueCount == 0 {
		return nil, hal.ErrDeviceLost
	}
	d := &Device{w: a.w}
	d.queue = &Queue{w: a.w}
	a.w.record("OpenDevice family=%d queues=%d", family, queueCount)
	return d, nil
}
