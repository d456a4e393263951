package headless

import (
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

// Surface implements hal.Surface. The swapchain images it hands out are
// owned by the surface; their views live until the next Configure or
// Unconfigure.
type Surface struct {
	w *world

	extent     hal.Extent2D
	configured bool
	outOfDate  bool
	cfg        hal.SwapchainConfig
	images     []*image
	views      []*imageView
	acquired   []bool
	next       uint32
	presents   int

	acquireErr error
	presentErr error
}

func newSurface(w *world) *Surface {
	return &Surface{w: w, extent: w.cfg.Capabilities.CurrentExtent}
}

func (s *Surface) Label() string {
	return "surface"
}

func (s *Surface) Capabilities(adapter hal.Adapter) (hal.SurfaceCapabilities, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	caps := s.w.cfg.Capabilities
	caps.CurrentExtent = s.extent
	caps.PresentModes = append([]hal.PresentMode(nil), caps.PresentModes...)
	return caps, nil
}

func (s *Surface) Formats(adapter hal.Adapter) ([]hal.Format, error) {
	return append([]hal.Format(nil), s.w.cfg.Formats...), nil
}

func (s *Surface) Configure(device hal.Device, cfg hal.SwapchainConfig) error {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()

	caps := s.w.cfg.Capabilities
	if !containsFormat(s.w.cfg.Formats, cfg.Format) {
		s.w.violate("ConfigureSurface: format %s not supported", cfg.Format)
	}
	if cfg.Extent.Width < caps.MinImageExtent.Width || cfg.Extent.Width > caps.MaxImageExtent.Width ||
		cfg.Extent.Height < caps.MinImageExtent.Height || cfg.Extent.Height > caps.MaxImageExtent.Height {
		s.w.violate("ConfigureSurface: extent %dx%d outside the surface range", cfg.Extent.Width, cfg.Extent.Height)
	}
	if cfg.ImageCount < caps.MinImageCount || (caps.MaxImageCount > 0 && cfg.ImageCount > caps.MaxImageCount) {
		s.w.violate("ConfigureSurface: %d images outside the surface range", cfg.ImageCount)
	}
	supported := false
	for _, m := range caps.PresentModes {
		if m == cfg.PresentMode {
			supported = true
		}
	}
	if !supported {
		s.w.violate("ConfigureSurface: present mode %d not supported", cfg.PresentMode)
	}

	s.unconfigure()
	s.cfg = cfg
	for i := uint32(0); i < cfg.ImageCount; i++ {
		img := &image{
			object:    s.w.newObject("swapchain-image"),
			desc:      hal.ImageDesc{Width: cfg.Extent.Width, Height: cfg.Extent.Height, Format: cfg.Format, Usage: hal.ImageUsageColorAttachment},
			layout:    hal.ImageLayoutUndefined,
			swapchain: true,
		}
		v := &imageView{object: s.w.newObject("swapchain-view"), image: img}
		img.views++
		s.images = append(s.images, img)
		s.views = append(s.views, v)
		s.w.track(v, "swapchain-view")
	}
	s.acquired = make([]bool, cfg.ImageCount)
	s.next = 0
	s.configured = true
	s.outOfDate = false
	s.w.record("ConfigureSurface %dx%d %s images=%d", cfg.Extent.Width, cfg.Extent.Height, cfg.Format, cfg.ImageCount)
	return nil
}

func (s *Surface) Unconfigure(device hal.Device) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if s.configured {
		s.unconfigure()
		s.w.record("UnconfigureSurface")
	}
}

func (s *Surface) unconfigure() {
	for _, v := range s.views {
		s.w.release(v, "DestroySwapchainView")
	}
	s.images, s.views, s.acquired = nil, nil, nil
	s.configured = false
}

func (s *Surface) AcquireImage(timeout uint64) (hal.SwapchainImage, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if !s.configured || s.outOfDate {
		s.w.record("AcquireImage out-of-date")
		return hal.SwapchainImage{}, hal.ErrOutOfDate
	}
	if err := s.acquireErr; err != nil {
		s.acquireErr = nil
		s.w.record("AcquireImage %v", err)
		return hal.SwapchainImage{}, err
	}
	idx := s.next
	s.next = (s.next + 1) % uint32(len(s.images))
	if s.acquired[idx] {
		s.w.violate("AcquireImage: image %d acquired twice without present", idx)
	}
	s.acquired[idx] = true
	s.w.record("AcquireImage %d", idx)
	return hal.SwapchainImage{Index: idx, View: s.views[idx]}, nil
}

// present is called by the queue with the world lock held.
func (s *Surface) present(img hal.SwapchainImage) error {
	if !s.configured || int(img.Index) >= len(s.acquired) || !s.acquired[img.Index] {
		s.w.violate("QueuePresent: image %d was not acquired", img.Index)
		return hal.ErrOutOfDate
	}
	s.acquired[img.Index] = false
	if err := s.presentErr; err != nil {
		s.presentErr = nil
		s.w.record("Present %d %v", img.Index, err)
		return err
	}
	if s.outOfDate {
		s.w.record("Present %d out-of-date", img.Index)
		return hal.ErrOutOfDate
	}
	s.presents++
	s.w.record("Present %d", img.Index)
	return nil
}

func (s *Surface) Destroy() {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if s.configured {
		s.w.violate("DestroySurface: swapchain still configured")
	}
	s.w.record("DestroySurface")
}

// Resize changes the extent the window system reports. A configured
// swapchain becomes out of date.
func (s *Surface) Resize(width, height uint32) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.extent = hal.Extent2D{Width: width, Height: height}
	if s.configured && s.extent != s.cfg.Extent {
		s.outOfDate = true
	}
}

// InjectAcquireError makes the next AcquireImage fail with err.
func (s *Surface) InjectAcquireError(err error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.acquireErr = err
}

// InjectPresentError makes the next present fail with err.
func (s *Surface) InjectPresentError(err error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	s.presentErr = err
}

func (s *Surface) Presents() int {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	return s.presents
}

func (s *Surface) Config() hal.SwapchainConfig {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	return s.cfg
}

// ClearColor returns the color the swapchain image was last cleared to.
func (s *Surface) ClearColor(index uint32) hal.ClearColor {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if int(index) >= len(s.images) {
		return hal.ClearColor{}
	}
	return s.images[index].clear
}

func containsFormat(formats []hal.Format, f hal.Format) bool {
	for _, x := range formats {
		if x == f {
			return true
		}
	}
	return false
}
