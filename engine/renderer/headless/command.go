package headless

import (
	"errors"
	"time"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

type commandBufferState uint8

const (
	stateInitial commandBufferState = iota
	stateRecording
	stateExecutable
	statePending
	stateInvalid
)

type command struct {
	refs []hal.Resource
	exec func(w *world)
}

type commandPool struct {
	object
	w         *world
	transient bool
	buffers   []*commandBuffer
}

func (p *commandPool) Allocate() (hal.CommandBuffer, error) {
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	if _, ok := p.w.live[p]; !ok {
		return nil, errors.New("headless: command pool destroyed")
	}
	cb := &commandBuffer{object: p.w.newObject("command-buffer"), w: p.w, pool: p}
	p.buffers = append(p.buffers, cb)
	p.w.track(cb, "command-buffer")
	p.w.record("AllocateCommandBuffer %s %s", cb.label, p.label)
	return cb, nil
}

func (p *commandPool) Reset() error {
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	for _, cb := range p.buffers {
		if cb.state == statePending || p.w.busy(cb) {
			p.w.violate("ResetCommandPool: %s is pending", cb.label)
		}
		cb.state = stateInitial
		cb.commands = nil
	}
	p.w.record("ResetCommandPool %s", p.label)
	return nil
}

func (p *commandPool) Free(buffers []hal.CommandBuffer) {
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	for _, b := range buffers {
		cb := b.(*commandBuffer)
		for i, owned := range p.buffers {
			if owned == cb {
				p.buffers = append(p.buffers[:i], p.buffers[i+1:]...)
				break
			}
		}
		p.w.release(cb, "FreeCommandBuffer")
	}
}

type commandBuffer struct {
	object
	w             *world
	pool          *commandPool
	state         commandBufferState
	oneTime       bool
	commands      []command
	inRenderPass  bool
	pipelineBound bool
}

func (cb *commandBuffer) add(refs []hal.Resource, exec func(w *world)) {
	if cb.state != stateRecording {
		cb.w.violate("%s: command recorded outside Begin/End", cb.label)
	}
	cb.commands = append(cb.commands, command{refs: refs, exec: exec})
}

func (cb *commandBuffer) Begin(oneTimeSubmit bool) error {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	if cb.state == statePending {
		cb.w.violate("BeginCommandBuffer: %s is pending", cb.label)
	}
	cb.state = stateRecording
	cb.oneTime = oneTimeSubmit
	cb.commands = nil
	cb.inRenderPass = false
	cb.pipelineBound = false
	cb.w.record("BeginCommandBuffer %s", cb.label)
	return nil
}

func (cb *commandBuffer) End() error {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	if cb.state != stateRecording {
		cb.w.violate("EndCommandBuffer: %s is not recording", cb.label)
		return errors.New("headless: command buffer not recording")
	}
	if cb.inRenderPass {
		cb.w.violate("EndCommandBuffer: %s ended inside a render pass", cb.label)
	}
	cb.state = stateExecutable
	cb.w.record("EndCommandBuffer %s", cb.label)
	return nil
}

func (cb *commandBuffer) PipelineBarrier(src, dst hal.PipelineStage, barriers []hal.ImageBarrier) {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	refs := make([]hal.Resource, 0, len(barriers))
	for _, b := range barriers {
		refs = append(refs, b.Image)
	}
	barriers = append([]hal.ImageBarrier(nil), barriers...)
	cb.add(refs, func(w *world) {
		for _, b := range barriers {
			img := b.Image.(*image)
			if b.OldLayout != hal.ImageLayoutUndefined && img.layout != b.OldLayout {
				w.violate("PipelineBarrier: %s is in layout %d, barrier expects %d", img.label, img.layout, b.OldLayout)
			}
			img.layout = b.NewLayout
		}
	})
	cb.w.record("CmdPipelineBarrier %s barriers=%d", cb.label, len(barriers))
}

func (cb *commandBuffer) CopyBufferToImage(src hal.Buffer, dst hal.Image, layout hal.ImageLayout, regions []hal.BufferImageCopy) {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	regions = append([]hal.BufferImageCopy(nil), regions...)
	cb.add([]hal.Resource{src, dst}, func(w *world) {
		buf, img := src.(*buffer), dst.(*image)
		if layout != hal.ImageLayoutTransferDst || img.layout != hal.ImageLayoutTransferDst {
			w.violate("CopyBufferToImage: %s is not in the transfer destination layout", img.label)
		}
		data := buf.bytes()
		for _, r := range regions {
			rowLength := r.BufferRowLength
			if rowLength == 0 {
				rowLength = r.Width
			}
			for y := uint32(0); y < r.Height; y++ {
				srcOff := r.BufferOffset + uint64(y)*uint64(rowLength)*4
				dstOff := uint64(y) * uint64(img.desc.Width) * 4
				n := uint64(r.Width) * 4
				if srcOff+n > uint64(len(data)) || dstOff+n > uint64(len(img.pixels)) {
					w.violate("CopyBufferToImage: row %d out of range", y)
					return
				}
				copy(img.pixels[dstOff:dstOff+n], data[srcOff:srcOff+n])
			}
		}
	})
	cb.w.record("CmdCopyBufferToImage %s %s %s", cb.label, src.Label(), dst.Label())
}

func (cb *commandBuffer) SetViewport(viewport hal.Viewport) {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	cb.add(nil, nil)
	cb.w.record("CmdSetViewport %s %dx%d", cb.label, viewport.Rect.Extent.Width, viewport.Rect.Extent.Height)
}

func (cb *commandBuffer) SetScissor(rect hal.Rect2D) {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	cb.add(nil, nil)
	cb.w.record("CmdSetScissor %s %dx%d", cb.label, rect.Extent.Width, rect.Extent.Height)
}

func (cb *commandBuffer) BeginRenderPass(pass hal.RenderPass, fb hal.Framebuffer, area hal.Rect2D, clear []hal.ClearColor) {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	if cb.inRenderPass {
		cb.w.violate("CmdBeginRenderPass: %s already inside a render pass", cb.label)
	}
	frame := fb.(*framebuffer)
	if frame.pass != pass.(*renderPass) {
		cb.w.violate("CmdBeginRenderPass: %s was created for %s", frame.label, frame.pass.label)
	}
	cb.inRenderPass = true
	clearValues := append([]hal.ClearColor(nil), clear...)
	cb.add([]hal.Resource{pass, fb}, func(w *world) {
		rp := pass.(*renderPass)
		for i, v := range frame.views {
			if i < len(clearValues) {
				v.image.clear = clearValues[i]
			}
			if i < len(rp.desc.Attachments) {
				v.image.layout = rp.desc.Attachments[i].FinalLayout
			}
		}
	})
	cb.w.record("CmdBeginRenderPass %s %s %s", cb.label, pass.Label(), fb.Label())
}

func (cb *commandBuffer) EndRenderPass() {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	if !cb.inRenderPass {
		cb.w.violate("CmdEndRenderPass: %s is not inside a render pass", cb.label)
	}
	cb.inRenderPass = false
	cb.add(nil, nil)
	cb.w.record("CmdEndRenderPass %s", cb.label)
}

func (cb *commandBuffer) BindGraphicsPipeline(p hal.GraphicsPipeline) {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	cb.pipelineBound = true
	cb.add([]hal.Resource{p}, nil)
	cb.w.record("CmdBindPipeline %s %s", cb.label, p.Label())
}

func (cb *commandBuffer) BindVertexBuffer(binding uint32, b hal.Buffer, offset uint64) {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	buf := b.(*buffer)
	if buf.usage&hal.BufferUsageVertex == 0 {
		cb.w.violate("CmdBindVertexBuffers: %s lacks vertex usage", buf.label)
	}
	cb.add([]hal.Resource{b}, nil)
	cb.w.record("CmdBindVertexBuffers %s %s", cb.label, buf.label)
}

func (cb *commandBuffer) BindDescriptorSets(layout hal.PipelineLayout, first uint32, sets []hal.DescriptorSet) {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	refs := []hal.Resource{layout}
	for _, s := range sets {
		set := s.(*descriptorSet)
		for _, b := range set.layout.bindings {
			wr, ok := set.written[b.Binding]
			if !ok {
				cb.w.violate("CmdBindDescriptorSets: %s binding %d never written", set.label, b.Binding)
				continue
			}
			for _, r := range []hal.Resource{wr.Buffer, wr.View, wr.Sampler} {
				if r != nil {
					refs = append(refs, r)
				}
			}
		}
		refs = append(refs, s)
	}
	cb.add(refs, nil)
	cb.w.record("CmdBindDescriptorSets %s first=%d count=%d", cb.label, first, len(sets))
}

func (cb *commandBuffer) PushConstants(layout hal.PipelineLayout, stages hal.ShaderStage, offset uint32, data []byte) {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	l := layout.(*pipelineLayout)
	covered := false
	for _, pc := range l.pushConstants {
		if pc.Stages&stages == stages && offset >= pc.Offset && offset+uint32(len(data)) <= pc.Offset+pc.Size {
			covered = true
		}
	}
	if !covered {
		cb.w.violate("CmdPushConstants: %d bytes at %d outside the layout ranges", len(data), offset)
	}
	cb.add([]hal.Resource{layout}, nil)
	cb.w.record("CmdPushConstants %s size=%d", cb.label, len(data))
}

func (cb *commandBuffer) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	cb.w.mu.Lock()
	defer cb.w.mu.Unlock()
	if !cb.inRenderPass || !cb.pipelineBound {
		cb.w.violate("CmdDraw: %s has no render pass or pipeline", cb.label)
	}
	cb.add(nil, func(w *world) {
		w.draws += uint64(vertexCount) * uint64(instanceCount)
	})
	cb.w.record("CmdDraw %s vertices=%d instances=%d", cb.label, vertexCount, instanceCount)
}

type submission struct {
	buffers []*commandBuffer
	refs    map[hal.Resource]struct{}
	fence   *fence
}

// Queue implements hal.Queue.
type Queue struct {
	w *world
}

func (q *Queue) Submit(s hal.Submission, f hal.Fence) error {
	q.w.mu.Lock()
	defer q.w.mu.Unlock()

	sub := &submission{refs: make(map[hal.Resource]struct{})}
	for _, b := range s.CommandBuffers {
		cb := b.(*commandBuffer)
		if cb.state != stateExecutable {
			q.w.violate("QueueSubmit: %s is not executable", cb.label)
			return errors.New("headless: command buffer not executable")
		}
		sub.buffers = append(sub.buffers, cb)
		sub.refs[cb] = struct{}{}
		for _, c := range cb.commands {
			for _, r := range c.refs {
				sub.refs[r] = struct{}{}
			}
		}
	}
	for _, h := range s.WaitSemaphores {
		sem := h.(*semaphore)
		if !sem.pendingSignal {
			q.w.violate("QueueSubmit: waits on %s which is never signaled", sem.label)
		}
		sem.pendingSignal = false
	}
	for _, h := range s.SignalSemaphores {
		sem := h.(*semaphore)
		if sem.pendingSignal {
			q.w.violate("QueueSubmit: %s signaled twice without a wait", sem.label)
		}
		sem.pendingSignal = true
		sub.refs[sem] = struct{}{}
	}
	if f != nil {
		sub.fence = f.(*fence)
		if sub.fence.signaled {
			q.w.violate("QueueSubmit: %s is already signaled", sub.fence.label)
		}
		sub.refs[sub.fence] = struct{}{}
	}
	for _, cb := range sub.buffers {
		cb.state = statePending
	}

	q.w.pending = append(q.w.pending, sub)
	q.w.inFlight.Add(1)
	label := "none"
	if sub.fence != nil {
		label = sub.fence.label
	}
	q.w.record("QueueSubmit buffers=%d fence=%s", len(sub.buffers), label)

	if q.w.cfg.SubmitLatency <= 0 {
		q.w.complete(sub)
		return nil
	}
	time.AfterFunc(q.w.cfg.SubmitLatency, func() {
		q.w.mu.Lock()
		defer q.w.mu.Unlock()
		q.w.complete(sub)
	})
	return nil
}

// complete runs the recorded commands and retires the submission. The world
// lock must be held.
func (w *world) complete(sub *submission) {
	for _, cb := range sub.buffers {
		for _, c := range cb.commands {
			if c.exec != nil {
				c.exec(w)
			}
		}
		if cb.oneTime {
			cb.state = stateInvalid
		} else {
			cb.state = stateExecutable
		}
	}
	for i, p := range w.pending {
		if p == sub {
			w.pending = append(w.pending[:i], w.pending[i+1:]...)
			break
		}
	}
	if sub.fence != nil {
		sub.fence.signal()
	}
	w.inFlight.Done()
}

func (q *Queue) Present(surface hal.Surface, img hal.SwapchainImage, wait hal.Semaphore) error {
	q.w.mu.Lock()
	defer q.w.mu.Unlock()
	s := surface.(*Surface)
	if wait != nil {
		sem := wait.(*semaphore)
		if !sem.pendingSignal {
			q.w.violate("QueuePresent: waits on %s which is never signaled", sem.label)
		}
		sem.pendingSignal = false
	}
	return s.present(img)
}
