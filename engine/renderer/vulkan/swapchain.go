package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

// Surface owns the window surface and, while configured, the swapchain and
// the views of its images.
type Surface struct {
	context *VulkanContext
	window  Window

	swapchain vk.Swapchain
	images    []vk.Image
	views     []*imageView
	// acquireFence is waited on the host so that AcquireImage returns an
	// image that is ready to be rendered to.
	acquireFence vk.Fence
}

func newSurface(context *VulkanContext, window Window) *Surface {
	return &Surface{context: context, window: window}
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func querySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface) (*VulkanSwapchainSupportInfo, error) {
	info := &VulkanSwapchainSupportInfo{}
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &info.Capabilities); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res)
	}
	info.Capabilities.Deref()
	info.Capabilities.CurrentExtent.Deref()
	info.Capabilities.MinImageExtent.Deref()
	info.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, nil); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
	}
	if formatCount != 0 {
		info.Formats = make([]vk.SurfaceFormat, formatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &formatCount, info.Formats); res != vk.Success {
			return nil, resultError("vkGetPhysicalDeviceSurfaceFormatsKHR", res)
		}
		for i := range info.Formats {
			info.Formats[i].Deref()
		}
	}

	var presentModeCount uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, nil); res != vk.Success {
		return nil, resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
	}
	if presentModeCount != 0 {
		info.PresentModes = make([]vk.PresentMode, presentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &presentModeCount, info.PresentModes); res != vk.Success {
			return nil, resultError("vkGetPhysicalDeviceSurfacePresentModesKHR", res)
		}
	}
	return info, nil
}

// Capabilities reports the window framebuffer size when the surface leaves
// the extent to the swapchain.
func (s *Surface) Capabilities(adapter hal.Adapter) (hal.SurfaceCapabilities, error) {
	support, err := querySwapchainSupport(adapter.(*Adapter).handle, s.context.Surface)
	if err != nil {
		return hal.SurfaceCapabilities{}, err
	}
	caps := support.Capabilities
	current := halExtent(caps.CurrentExtent)
	if current.Width == hal.UndefinedExtent {
		w, h := s.window.GetFramebufferSize()
		current = hal.Extent2D{Width: uint32(w), Height: uint32(h)}
	}
	return hal.SurfaceCapabilities{
		MinImageCount:  caps.MinImageCount,
		MaxImageCount:  caps.MaxImageCount,
		CurrentExtent:  current,
		MinImageExtent: halExtent(caps.MinImageExtent),
		MaxImageExtent: halExtent(caps.MaxImageExtent),
		PresentModes:   halPresentModes(support.PresentModes),
	}, nil
}

// Formats lists the supported formats in the sRGB non-linear color space.
func (s *Surface) Formats(adapter hal.Adapter) ([]hal.Format, error) {
	support, err := querySwapchainSupport(adapter.(*Adapter).handle, s.context.Surface)
	if err != nil {
		return nil, err
	}
	var formats []hal.Format
	for _, f := range support.Formats {
		if f.ColorSpace != vk.ColorSpaceSrgbNonlinear {
			continue
		}
		if hf := halFormat(f.Format); hf != hal.FormatUndefined {
			formats = append(formats, hf)
		}
	}
	return formats, nil
}

// Configure creates the swapchain, replacing the previous one.
func (s *Surface) Configure(device hal.Device, config hal.SwapchainConfig) error {
	return s.context.locks.SafeCall(SwapchainManagement, func() error {
		return s.configure(device.(*Device), config)
	})
}

func (s *Surface) configure(d *Device, config hal.SwapchainConfig) error {
	caps, err := querySwapchainSupport(d.adapter.handle, s.context.Surface)
	if err != nil {
		return err
	}

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          s.context.Surface,
		MinImageCount:    config.ImageCount,
		ImageFormat:      vkFormat(config.Format),
		ImageColorSpace:  vk.ColorSpaceSrgbNonlinear,
		ImageExtent:      vkExtent(config.Extent),
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		// graphics and present share one queue family
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.Capabilities.CurrentTransform,
		CompositeAlpha:   chooseCompositeAlpha(caps.Capabilities.SupportedCompositeAlpha),
		PresentMode:      vkPresentMode(config.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     s.swapchain,
	}

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(s.context.Device, &swapchainCreateInfo, s.context.Allocator, &handle); res != vk.Success {
		return resultError("vkCreateSwapchainKHR", res)
	}
	s.release()
	s.swapchain = handle

	var imageCount uint32
	if res := vk.GetSwapchainImages(s.context.Device, s.swapchain, &imageCount, nil); res != vk.Success {
		s.release()
		return resultError("vkGetSwapchainImagesKHR", res)
	}
	s.images = make([]vk.Image, imageCount)
	if res := vk.GetSwapchainImages(s.context.Device, s.swapchain, &imageCount, s.images); res != vk.Success {
		s.release()
		return resultError("vkGetSwapchainImagesKHR", res)
	}

	for _, img := range s.images {
		view, err := createImageView(s.context, img, swapchainCreateInfo.ImageFormat)
		if err != nil {
			s.release()
			return fmt.Errorf("failed to create swapchain image view: %w", err)
		}
		s.views = append(s.views, &imageView{object: s.context.newObject("swapchain-view"), handle: view})
	}

	if s.acquireFence == vk.NullFence {
		if s.acquireFence, err = createFence(s.context, false); err != nil {
			s.release()
			return err
		}
	}

	core.LogInfo("Swapchain configured: %dx%d %s, %d images", config.Extent.Width, config.Extent.Height, config.Format, imageCount)
	return nil
}

func chooseCompositeAlpha(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	// a transparent window needs one of the blending modes
	for _, mode := range []vk.CompositeAlphaFlagBits{
		vk.CompositeAlphaPreMultipliedBit,
		vk.CompositeAlphaPostMultipliedBit,
		vk.CompositeAlphaOpaqueBit,
	} {
		if supported&vk.CompositeAlphaFlags(mode) != 0 {
			return mode
		}
	}
	return vk.CompositeAlphaInheritBit
}

// release destroys the views and the swapchain. Swapchain images are owned
// by the swapchain.
func (s *Surface) release() {
	for _, v := range s.views {
		vk.DestroyImageView(s.context.Device, v.handle, s.context.Allocator)
	}
	s.views = nil
	s.images = nil
	if s.swapchain != vk.NullSwapchain {
		vk.DestroySwapchain(s.context.Device, s.swapchain, s.context.Allocator)
		s.swapchain = vk.NullSwapchain
	}
}

func (s *Surface) Unconfigure(device hal.Device) {
	_ = s.context.locks.SafeCall(SwapchainManagement, func() error {
		s.release()
		if s.acquireFence != vk.NullFence {
			vk.DestroyFence(s.context.Device, s.acquireFence, s.context.Allocator)
			s.acquireFence = vk.NullFence
		}
		return nil
	})
}

// AcquireImage acquires the next image and waits on the host until the
// presentation engine has released it.
func (s *Surface) AcquireImage(timeout uint64) (hal.SwapchainImage, error) {
	if s.swapchain == vk.NullSwapchain {
		return hal.SwapchainImage{}, hal.ErrOutOfDate
	}
	var index uint32
	result := vk.AcquireNextImage(s.context.Device, s.swapchain, timeout, vk.NullSemaphore, s.acquireFence, &index)
	switch result {
	case vk.Success, vk.Suboptimal:
	default:
		return hal.SwapchainImage{}, resultError("vkAcquireNextImageKHR", result)
	}
	if err := waitForFence(s.context, s.acquireFence, timeout); err != nil {
		return hal.SwapchainImage{}, err
	}
	if res := vk.ResetFences(s.context.Device, 1, []vk.Fence{s.acquireFence}); res != vk.Success {
		return hal.SwapchainImage{}, resultError("vkResetFences", res)
	}
	return hal.SwapchainImage{Index: index, View: s.views[index]}, nil
}

func (s *Surface) Destroy() {
	if s.swapchain != vk.NullSwapchain {
		core.LogWarn("Surface destroyed while its swapchain is still configured")
		s.release()
	}
}
