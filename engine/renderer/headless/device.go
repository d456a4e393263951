package headless

import (
	"errors"
	"fmt"
	"time"

	"github.com/spaghettifunk/tinted/engine/math"
	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

const spirvMagic = 0x07230203

type memory struct {
	object
	typ    hal.MemoryTypeID
	data   []byte
	mapped bool
}

type buffer struct {
	object
	size   uint64
	usage  hal.BufferUsage
	memory *memory
	offset uint64
}

// bytes returns the bound memory range of the buffer.
func (b *buffer) bytes() []byte {
	if b.memory == nil {
		return nil
	}
	return b.memory.data[b.offset : b.offset+b.size]
}

type image struct {
	object
	desc   hal.ImageDesc
	memory *memory
	layout hal.ImageLayout
	pixels []byte
	views  int
	clear  hal.ClearColor
	// swapchain images are owned by the surface and never destroyed directly
	swapchain bool
}

type imageView struct {
	object
	image *image
}

type sampler struct {
	object
	desc hal.SamplerDesc
}

type fence struct {
	object
	signaled bool
	done     chan struct{}
}

func (f *fence) signal() {
	if !f.signaled {
		f.signaled = true
		close(f.done)
	}
}

type semaphore struct {
	object
	pendingSignal bool
}

type descriptorSetLayout struct {
	object
	bindings []hal.DescriptorSetLayoutBinding
}

type descriptorPool struct {
	object
	maxSets uint32
	sizes   []hal.DescriptorPoolSize
	sets    []*descriptorSet
}

type descriptorSet struct {
	object
	layout  *descriptorSetLayout
	written map[uint32]hal.DescriptorWrite
}

type renderPass struct {
	object
	desc hal.RenderPassDesc
}

type framebuffer struct {
	object
	pass   *renderPass
	views  []*imageView
	extent hal.Extent2D
}

type shaderModule struct {
	object
	words int
}

type pipelineLayout struct {
	object
	sets          []hal.DescriptorSetLayout
	pushConstants []hal.PushConstantRange
}

type graphicsPipeline struct {
	object
	desc hal.GraphicsPipelineDesc
}

// Device implements hal.Device.
type Device struct {
	w         *world
	queue     *Queue
	destroyed bool
}

func (d *Device) Queue(index int) hal.Queue {
	return d.queue
}

// WaitIdle blocks until every submission completed.
func (d *Device) WaitIdle() error {
	d.w.inFlight.Wait()
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.record("WaitIdle")
	return nil
}

func (d *Device) Destroy() {
	d.w.inFlight.Wait()
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	for r, kind := range d.w.live {
		if kind == "command-buffer" {
			continue
		}
		d.w.violate("DestroyDevice: %s still alive", r.Label())
	}
	d.destroyed = true
	d.w.record("DestroyDevice")
}

func (d *Device) CreateBuffer(size uint64, usage hal.BufferUsage) (hal.Buffer, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	if size == 0 {
		return nil, errors.New("headless: zero-sized buffer")
	}
	b := &buffer{object: d.w.newObject("buffer"), size: size, usage: usage}
	d.w.track(b, "buffer")
	d.w.record("CreateBuffer %s size=%d", b.label, size)
	return b, nil
}

func (d *Device) BufferRequirements(b hal.Buffer) hal.MemoryRequirements {
	buf := b.(*buffer)
	mask := uint32(0)
	for i := range d.w.cfg.MemoryTypes {
		mask |= 1 << uint(i)
	}
	return hal.MemoryRequirements{
		Size:      math.AlignUp(buf.size, 256),
		Alignment: 256,
		TypeMask:  mask,
	}
}

func (d *Device) BindBufferMemory(b hal.Buffer, m hal.Memory, offset uint64) error {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	buf, mem := b.(*buffer), m.(*memory)
	if buf.memory != nil {
		d.w.violate("BindBufferMemory: %s already bound", buf.label)
	}
	if offset+buf.size > uint64(len(mem.data)) {
		return fmt.Errorf("headless: %s does not fit in %s", buf.label, mem.label)
	}
	buf.memory, buf.offset = mem, offset
	d.w.record("BindBufferMemory %s %s", buf.label, mem.label)
	return nil
}

func (d *Device) DestroyBuffer(b hal.Buffer) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	if d.w.release(b, "DestroyBuffer") {
		b.(*buffer).memory = nil
	}
}

func (d *Device) AllocateMemory(typ hal.MemoryTypeID, size uint64) (hal.Memory, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	if int(typ) >= len(d.w.cfg.MemoryTypes) {
		return nil, fmt.Errorf("headless: memory type %d out of range", typ)
	}
	m := &memory{object: d.w.newObject("memory"), typ: typ, data: make([]byte, size)}
	d.w.track(m, "memory")
	d.w.record("AllocateMemory %s type=%d size=%d", m.label, typ, size)
	return m, nil
}

func (d *Device) MapMemory(m hal.Memory, offset, size uint64) ([]byte, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	mem := m.(*memory)
	if !d.w.cfg.MemoryTypes[mem.typ].Properties.Contains(hal.MemoryHostVisible) {
		d.w.violate("MapMemory: %s is not host visible", mem.label)
		return nil, errors.New("headless: memory not host visible")
	}
	if mem.mapped {
		d.w.violate("MapMemory: %s already mapped", mem.label)
	}
	if offset+size > uint64(len(mem.data)) {
		return nil, fmt.Errorf("headless: map range %d+%d exceeds %s", offset, size, mem.label)
	}
	mem.mapped = true
	d.w.record("MapMemory %s offset=%d size=%d", mem.label, offset, size)
	return mem.data[offset : offset+size : offset+size], nil
}

func (d *Device) UnmapMemory(m hal.Memory) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	mem := m.(*memory)
	if !mem.mapped {
		d.w.violate("UnmapMemory: %s is not mapped", mem.label)
	}
	mem.mapped = false
	d.w.record("UnmapMemory %s", mem.label)
}

func (d *Device) FreeMemory(m hal.Memory) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	mem := m.(*memory)
	for r := range d.w.live {
		switch o := r.(type) {
		case *buffer:
			if o.memory == mem {
				d.w.violate("FreeMemory: %s still bound to %s", mem.label, o.label)
			}
		case *image:
			if o.memory == mem {
				d.w.violate("FreeMemory: %s still bound to %s", mem.label, o.label)
			}
		}
	}
	d.w.release(m, "FreeMemory")
}

func (d *Device) CreateImage(desc hal.ImageDesc) (hal.Image, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	if desc.Width == 0 || desc.Height == 0 {
		return nil, errors.New("headless: zero-sized image")
	}
	img := &image{
		object: d.w.newObject("image"),
		desc:   desc,
		layout: hal.ImageLayoutUndefined,
		pixels: make([]byte, int(desc.Width)*int(desc.Height)*4),
	}
	d.w.track(img, "image")
	d.w.record("CreateImage %s %dx%d %s", img.label, desc.Width, desc.Height, desc.Format)
	return img, nil
}

func (d *Device) ImageRequirements(i hal.Image) hal.MemoryRequirements {
	img := i.(*image)
	mask := uint32(0)
	for idx, t := range d.w.cfg.MemoryTypes {
		if t.Properties.Contains(hal.MemoryDeviceLocal) {
			mask |= 1 << uint(idx)
		}
	}
	return hal.MemoryRequirements{
		Size:      math.AlignUp(uint64(len(img.pixels)), 4096),
		Alignment: 4096,
		TypeMask:  mask,
	}
}

func (d *Device) BindImageMemory(i hal.Image, m hal.Memory, offset uint64) error {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	img, mem := i.(*image), m.(*memory)
	if img.memory != nil {
		d.w.violate("BindImageMemory: %s already bound", img.label)
	}
	img.memory = mem
	d.w.record("BindImageMemory %s %s", img.label, mem.label)
	return nil
}

func (d *Device) DestroyImage(i hal.Image) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	img := i.(*image)
	if img.views > 0 {
		d.w.violate("DestroyImage: %s still has %d views", img.label, img.views)
	}
	if d.w.release(i, "DestroyImage") {
		img.memory = nil
	}
}

func (d *Device) CreateImageView(i hal.Image, format hal.Format) (hal.ImageView, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	img := i.(*image)
	if img.memory == nil && !img.swapchain {
		d.w.violate("CreateImageView: %s has no memory bound", img.label)
	}
	v := &imageView{object: d.w.newObject("image-view"), image: img}
	img.views++
	d.w.track(v, "image-view")
	d.w.record("CreateImageView %s %s", v.label, img.label)
	return v, nil
}

func (d *Device) DestroyImageView(v hal.ImageView) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	if d.w.release(v, "DestroyImageView") {
		v.(*imageView).image.views--
	}
}

func (d *Device) CreateSampler(desc hal.SamplerDesc) (hal.Sampler, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	s := &sampler{object: d.w.newObject("sampler"), desc: desc}
	d.w.track(s, "sampler")
	d.w.record("CreateSampler %s", s.label)
	return s, nil
}

func (d *Device) DestroySampler(s hal.Sampler) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.release(s, "DestroySampler")
}

func (d *Device) CreateFence(signaled bool) (hal.Fence, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	f := &fence{object: d.w.newObject("fence"), done: make(chan struct{})}
	if signaled {
		f.signal()
	}
	d.w.track(f, "fence")
	d.w.record("CreateFence %s signaled=%t", f.label, signaled)
	return f, nil
}

func (d *Device) WaitForFence(h hal.Fence, timeout uint64) error {
	f := h.(*fence)
	d.w.mu.Lock()
	done := f.done
	d.w.mu.Unlock()

	switch timeout {
	case hal.WaitForever:
		<-done
	case 0:
		select {
		case <-done:
		default:
			return hal.ErrTimeout
		}
	default:
		select {
		case <-done:
		case <-time.After(time.Duration(timeout)):
			return hal.ErrTimeout
		}
	}

	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.record("WaitForFence %s", f.label)
	return nil
}

func (d *Device) ResetFence(h hal.Fence) error {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	f := h.(*fence)
	if d.w.busy(f) {
		d.w.violate("ResetFence: %s is pending", f.label)
	}
	if f.signaled {
		f.signaled = false
		f.done = make(chan struct{})
	}
	d.w.record("ResetFence %s", f.label)
	return nil
}

func (d *Device) FenceSignaled(h hal.Fence) (bool, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	return h.(*fence).signaled, nil
}

func (d *Device) DestroyFence(f hal.Fence) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.release(f, "DestroyFence")
}

func (d *Device) CreateSemaphore() (hal.Semaphore, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	s := &semaphore{object: d.w.newObject("semaphore")}
	d.w.track(s, "semaphore")
	d.w.record("CreateSemaphore %s", s.label)
	return s, nil
}

func (d *Device) DestroySemaphore(s hal.Semaphore) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.release(s, "DestroySemaphore")
}

func (d *Device) CreateCommandPool(family int, transient bool) (hal.CommandPool, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	p := &commandPool{object: d.w.newObject("command-pool"), w: d.w, transient: transient}
	d.w.track(p, "command-pool")
	d.w.record("CreateCommandPool %s transient=%t", p.label, transient)
	return p, nil
}

func (d *Device) DestroyCommandPool(p hal.CommandPool) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	pool := p.(*commandPool)
	for _, cb := range pool.buffers {
		if d.w.busy(cb) {
			d.w.violate("DestroyCommandPool: %s is pending", cb.label)
		}
		delete(d.w.live, cb)
	}
	pool.buffers = nil
	d.w.release(p, "DestroyCommandPool")
}

func (d *Device) CreateDescriptorSetLayout(bindings []hal.DescriptorSetLayoutBinding) (hal.DescriptorSetLayout, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	l := &descriptorSetLayout{
		object:   d.w.newObject("descriptor-set-layout"),
		bindings: append([]hal.DescriptorSetLayoutBinding(nil), bindings...),
	}
	d.w.track(l, "descriptor-set-layout")
	d.w.record("CreateDescriptorSetLayout %s bindings=%d", l.label, len(bindings))
	return l, nil
}

func (d *Device) DestroyDescriptorSetLayout(l hal.DescriptorSetLayout) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.release(l, "DestroyDescriptorSetLayout")
}

func (d *Device) CreateDescriptorPool(maxSets uint32, sizes []hal.DescriptorPoolSize) (hal.DescriptorPool, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	p := &descriptorPool{
		object:  d.w.newObject("descriptor-pool"),
		maxSets: maxSets,
		sizes:   append([]hal.DescriptorPoolSize(nil), sizes...),
	}
	d.w.track(p, "descriptor-pool")
	d.w.record("CreateDescriptorPool %s sets=%d", p.label, maxSets)
	return p, nil
}

func (d *Device) DestroyDescriptorPool(p hal.DescriptorPool) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	pool := p.(*descriptorPool)
	for _, s := range pool.sets {
		if d.w.busy(s) {
			d.w.violate("DestroyDescriptorPool: %s is pending", s.label)
		}
		delete(d.w.live, s)
	}
	pool.sets = nil
	d.w.release(p, "DestroyDescriptorPool")
}

// AllocateDescriptorSet fails when the pool has no room left for the set's
// bindings, like an exactly-sized pool would.
func (d *Device) AllocateDescriptorSet(p hal.DescriptorPool, l hal.DescriptorSetLayout) (hal.DescriptorSet, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	pool, layout := p.(*descriptorPool), l.(*descriptorSetLayout)
	if uint32(len(pool.sets)) >= pool.maxSets {
		return nil, errors.New("headless: descriptor pool out of sets")
	}
	remaining := make(map[hal.DescriptorType]uint32)
	for _, s := range pool.sizes {
		remaining[s.Type] += s.Count
	}
	for _, s := range pool.sets {
		for _, b := range s.layout.bindings {
			remaining[b.Type] -= b.Count
		}
	}
	for _, b := range layout.bindings {
		if remaining[b.Type] < b.Count {
			return nil, errors.New("headless: descriptor pool out of descriptors")
		}
	}
	s := &descriptorSet{
		object:  d.w.newObject("descriptor-set"),
		layout:  layout,
		written: make(map[uint32]hal.DescriptorWrite),
	}
	pool.sets = append(pool.sets, s)
	d.w.track(s, "descriptor-set")
	d.w.record("AllocateDescriptorSet %s %s", s.label, pool.label)
	return s, nil
}

func (d *Device) WriteDescriptorSets(writes []hal.DescriptorWrite) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	for _, wr := range writes {
		set := wr.Set.(*descriptorSet)
		found := false
		for _, b := range set.layout.bindings {
			if b.Binding == wr.Binding {
				found = true
				if b.Type != wr.Type {
					d.w.violate("WriteDescriptorSets: %s binding %d type mismatch", set.label, wr.Binding)
				}
			}
		}
		if !found {
			d.w.violate("WriteDescriptorSets: %s has no binding %d", set.label, wr.Binding)
		}
		if d.w.busy(set) {
			d.w.violate("WriteDescriptorSets: %s is in use by a pending submission", set.label)
		}
		set.written[wr.Binding] = wr
		d.w.record("WriteDescriptorSet %s binding=%d", set.label, wr.Binding)
	}
}

func (d *Device) CreateRenderPass(desc hal.RenderPassDesc) (hal.RenderPass, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	if len(desc.Attachments) == 0 {
		return nil, errors.New("headless: render pass without attachments")
	}
	rp := &renderPass{object: d.w.newObject("render-pass"), desc: desc}
	d.w.track(rp, "render-pass")
	d.w.record("CreateRenderPass %s %s", rp.label, desc.Attachments[0].Format)
	return rp, nil
}

func (d *Device) DestroyRenderPass(rp hal.RenderPass) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.release(rp, "DestroyRenderPass")
}

func (d *Device) CreateFramebuffer(rp hal.RenderPass, views []hal.ImageView, extent hal.Extent2D) (hal.Framebuffer, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	pass := rp.(*renderPass)
	if _, ok := d.w.live[pass]; !ok {
		d.w.violate("CreateFramebuffer: %s is not alive", pass.label)
	}
	if len(views) != len(pass.desc.Attachments) {
		d.w.violate("CreateFramebuffer: %d views for %d attachments", len(views), len(pass.desc.Attachments))
	}
	fb := &framebuffer{object: d.w.newObject("framebuffer"), pass: pass, extent: extent}
	for _, v := range views {
		fb.views = append(fb.views, v.(*imageView))
	}
	d.w.track(fb, "framebuffer")
	d.w.record("CreateFramebuffer %s %s", fb.label, pass.label)
	return fb, nil
}

func (d *Device) DestroyFramebuffer(fb hal.Framebuffer) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.release(fb, "DestroyFramebuffer")
}

func (d *Device) CreateShaderModule(spirv []uint32) (hal.ShaderModule, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	if len(spirv) < 5 || spirv[0] != spirvMagic {
		return nil, errors.New("headless: shader module is not SPIR-V")
	}
	m := &shaderModule{object: d.w.newObject("shader-module"), words: len(spirv)}
	d.w.track(m, "shader-module")
	d.w.record("CreateShaderModule %s words=%d", m.label, len(spirv))
	return m, nil
}

func (d *Device) DestroyShaderModule(m hal.ShaderModule) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.release(m, "DestroyShaderModule")
}

func (d *Device) CreatePipelineLayout(sets []hal.DescriptorSetLayout, pushConstants []hal.PushConstantRange) (hal.PipelineLayout, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	var total uint32
	for _, pc := range pushConstants {
		if pc.Offset+pc.Size > total {
			total = pc.Offset + pc.Size
		}
	}
	if total > d.w.cfg.Limits.MaxPushConstantsSize {
		return nil, fmt.Errorf("headless: %d bytes of push constants exceed the limit", total)
	}
	l := &pipelineLayout{
		object:        d.w.newObject("pipeline-layout"),
		sets:          append([]hal.DescriptorSetLayout(nil), sets...),
		pushConstants: append([]hal.PushConstantRange(nil), pushConstants...),
	}
	d.w.track(l, "pipeline-layout")
	d.w.record("CreatePipelineLayout %s sets=%d", l.label, len(sets))
	return l, nil
}

func (d *Device) DestroyPipelineLayout(l hal.PipelineLayout) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.release(l, "DestroyPipelineLayout")
}

func (d *Device) CreateGraphicsPipeline(desc hal.GraphicsPipelineDesc) (hal.GraphicsPipeline, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	for _, r := range []hal.Resource{desc.VertexShader, desc.FragmentShader, desc.Layout, desc.RenderPass} {
		if r == nil {
			return nil, errors.New("headless: incomplete pipeline description")
		}
		if _, ok := d.w.live[r]; !ok {
			d.w.violate("CreateGraphicsPipeline: %s is not alive", r.Label())
		}
	}
	p := &graphicsPipeline{object: d.w.newObject("pipeline"), desc: desc}
	d.w.track(p, "pipeline")
	d.w.record("CreateGraphicsPipeline %s %s", p.label, desc.RenderPass.Label())
	return p, nil
}

func (d *Device) DestroyGraphicsPipeline(p hal.GraphicsPipeline) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	d.w.release(p, "DestroyGraphicsPipeline")
}
