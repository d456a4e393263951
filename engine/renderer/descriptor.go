package renderer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/tinted/engine/core"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

var (
	// ImageSetBindings is the layout of the texture set: the sampled image at
	// binding 0 and its sampler at binding 1, both read by the fragment stage.
	ImageSetBindings = []hal.DescriptorSetLayoutBinding{
		{Binding: 0, Type: hal.DescriptorTypeSampledImage, Count: 1, Stages: hal.ShaderStageFragment},
		{Binding: 1, Type: hal.DescriptorTypeSampler, Count: 1, Stages: hal.ShaderStageFragment},
	}
	// UniformSetBindings is the layout of the tint set.
	UniformSetBindings = []hal.DescriptorSetLayoutBinding{
		{Binding: 0, Type: hal.DescriptorTypeUniformBuffer, Count: 1, Stages: hal.ShaderStageFragment},
	}
)

type DescriptorSetLayout struct {
	id       uuid.UUID
	ctx      *DeviceContext
	handle   hal.DescriptorSetLayout
	bindings []hal.DescriptorSetLayoutBinding
}

func NewDescriptorSetLayout(ctx *DeviceContext, bindings []hal.DescriptorSetLayoutBinding) (*DescriptorSetLayout, error) {
	handle, err := ctx.Device().CreateDescriptorSetLayout(bindings)
	if err != nil {
		return nil, fmt.Errorf("failed to create descriptor set layout: %w", err)
	}
	return &DescriptorSetLayout{
		id:       ctx.register("descriptor-set-layout"),
		ctx:      ctx,
		handle:   handle,
		bindings: bindings,
	}, nil
}

func (l *DescriptorSetLayout) Handle() hal.DescriptorSetLayout {
	return l.handle
}

// PoolSizes returns the descriptor counts needed for exactly one set.
func (l *DescriptorSetLayout) PoolSizes() []hal.DescriptorPoolSize {
	sizes := make([]hal.DescriptorPoolSize, 0, len(l.bindings))
	for _, b := range l.bindings {
		sizes = append(sizes, hal.DescriptorPoolSize{Type: b.Type, Count: b.Count})
	}
	return sizes
}

func (l *DescriptorSetLayout) Destroy() {
	if l.handle == nil {
		return
	}
	l.ctx.Device().DestroyDescriptorSetLayout(l.handle)
	l.handle = nil
	l.ctx.unregister(l.id)
}

// DescriptorBinding is a pool holding a single set of one layout. The set is
// written once and freed with the pool.
type DescriptorBinding struct {
	id      uuid.UUID
	ctx     *DeviceContext
	layout  *DescriptorSetLayout
	pool    hal.DescriptorPool
	set     hal.DescriptorSet
	written bool
}

func NewDescriptorBinding(ctx *DeviceContext, layout *DescriptorSetLayout) (*DescriptorBinding, error) {
	device := ctx.Device()
	pool, err := device.CreateDescriptorPool(1, layout.PoolSizes())
	if err != nil {
		return nil, fmt.Errorf("failed to create descriptor pool: %w", err)
	}
	set, err := device.AllocateDescriptorSet(pool, layout.Handle())
	if err != nil {
		device.DestroyDescriptorPool(pool)
		return nil, fmt.Errorf("failed to allocate descriptor set: %w", err)
	}
	return &DescriptorBinding{
		id:     ctx.register("descriptor-binding"),
		ctx:    ctx,
		layout: layout,
		pool:   pool,
		set:    set,
	}, nil
}

// Write fills the set. The Set field of every write is overridden. A set can
// only be written once.
func (d *DescriptorBinding) Write(writes ...hal.DescriptorWrite) error {
	if d.written {
		return core.ErrDescriptorSetWritten
	}
	for i := range writes {
		writes[i].Set = d.set
	}
	d.ctx.Device().WriteDescriptorSets(writes)
	d.written = true
	return nil
}

func (d *DescriptorBinding) Set() hal.DescriptorSet {
	return d.set
}

func (d *DescriptorBinding) Layout() *DescriptorSetLayout {
	return d.layout
}

func (d *DescriptorBinding) Written() bool {
	return d.written
}

func (d *DescriptorBinding) Destroy() {
	if d.pool == nil {
		return
	}
	d.ctx.Device().DestroyDescriptorPool(d.pool)
	d.pool, d.set = nil, nil
	d.ctx.unregister(d.id)
}
