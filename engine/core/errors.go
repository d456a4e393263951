package core

import (
	"errors"
)

var (
	ErrSwapchainInvalid     = errors.New("swapchain out of date, recreating")
	ErrNoSuitableAdapter    = errors.New("no adapter with a graphics queue that can present to the surface")
	ErrNoMemoryType         = errors.New("no memory type matches the requested properties")
	ErrBufferOverflow       = errors.New("buffer update exceeds the allocated size")
	ErrEmptyBuffer          = errors.New("buffer size must be greater than zero")
	ErrShaderCompile        = errors.New("shader compilation failed")
	ErrDescriptorSetWritten = errors.New("descriptor set already written")
	ErrResourcesAlive       = errors.New("device destroyed while resources are still alive")
	ErrResourceReleased     = errors.New("resource already released")
	ErrUnknown              = errors.New("unknown")
)
