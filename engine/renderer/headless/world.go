package headless

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spaghettifunk/tinted/engine/renderer/hal"
)

// world is the state shared by every object of one headless instance. A
// single mutex guards it; simulated GPU completions take the same lock.
type world struct {
	cfg Config

	mu         sync.Mutex
	calls      []string
	violations []string
	live       map[hal.Resource]string
	ids        map[string]int
	pending    []*submission
	inFlight   sync.WaitGroup
	draws      uint64
}

func newWorld(cfg Config) *world {
	return &world{
		cfg:  cfg,
		live: make(map[hal.Resource]string),
		ids:  make(map[string]int),
	}
}

type object struct {
	label string
}

func (o *object) Label() string {
	return o.label
}

func (w *world) newObject(kind string) object {
	w.ids[kind]++
	return object{label: fmt.Sprintf("%s-%d", kind, w.ids[kind])}
}

func (w *world) record(format string, args ...interface{}) {
	w.calls = append(w.calls, fmt.Sprintf(format, args...))
}

func (w *world) violate(format string, args ...interface{}) {
	w.violations = append(w.violations, fmt.Sprintf(format, args...))
}

func (w *world) track(r hal.Resource, kind string) {
	w.live[r] = kind
}

// release forgets r and reports whether it was alive. Destroying a resource
// that is referenced by unfinished GPU work is a violation.
func (w *world) release(r hal.Resource, op string) bool {
	if r == nil {
		return false
	}
	if _, ok := w.live[r]; !ok {
		w.violate("%s: %s is not alive", op, r.Label())
		return false
	}
	if w.busy(r) {
		w.violate("%s: %s is still in use by a pending submission", op, r.Label())
	}
	delete(w.live, r)
	w.record("%s %s", op, r.Label())
	return true
}

func (w *world) busy(r hal.Resource) bool {
	for _, s := range w.pending {
		if _, ok := s.refs[r]; ok {
			return true
		}
	}
	return false
}

// Calls returns a copy of every recorded backend call, oldest first.
func (i *Instance) Calls() []string {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	return append([]string(nil), i.w.calls...)
}

// CallsWithPrefix returns the recorded calls starting with prefix.
func (i *Instance) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, c := range i.Calls() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (i *Instance) ResetCalls() {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	i.w.calls = nil
}

// Violations returns the API misuse detected so far, the way a validation
// layer would report it.
func (i *Instance) Violations() []string {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	return append([]string(nil), i.w.violations...)
}

// Live returns the number of live objects of the given kind, or of every
// kind when kind is empty.
func (i *Instance) Live(kind string) int {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	n := 0
	for _, k := range i.w.live {
		if kind == "" || k == kind {
			n++
		}
	}
	return n
}

// Draws returns the number of vertices drawn by completed submissions.
func (i *Instance) Draws() uint64 {
	i.w.mu.Lock()
	defer i.w.mu.Unlock()
	return i.w.draws
}

// Pixels returns a copy of the texel data of an image created by this backend.
func Pixels(img hal.Image) []byte {
	im := img.(*image)
	return append([]byte(nil), im.pixels...)
}

// Layout returns the layout an image is in after all completed work.
func Layout(img hal.Image) hal.ImageLayout {
	return img.(*image).layout
}
