package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/ofx/output"
)

// TimingCollector keeps a tree of timers. It is safe for concurrent use,
// which lets the viewer server share one collector across reloads.
type TimingCollector struct {
	mu      sync.Mutex
	roots   []*timerNode
	current *timerNode
	now     func() time.Time
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	children []*timerNode
	parent   *timerNode
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{now: time.Now}
}

// Start begins a timer under the innermost running timer, or as a new root.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: c.now()}
	if c.current == nil {
		c.roots = append(c.roots, node)
	} else {
		node.parent = c.current
		c.current.children = append(c.current.children, node)
	}
	c.current = node

	return &timingTimer{collector: c, node: node}
}

// Report writes the timing tree of every root.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		formatTimingTree(w, root, styles)
	}
}

// Stages flattens the finished timers depth first.
func (c *TimingCollector) Stages() []Stage {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stages []Stage
	var walk func(node *timerNode, depth int)
	walk = func(node *timerNode, depth int) {
		if !node.end.IsZero() {
			stages = append(stages, Stage{Name: node.name, Depth: depth, Duration: node.end.Sub(node.start)})
		}
		for _, child := range node.children {
			walk(child, depth+1)
		}
	}
	for _, root := range c.roots {
		walk(root, 0)
	}
	return stages
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

func (t *timingTimer) End() {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	if !t.node.end.IsZero() {
		return
	}
	t.node.end = c.now()

	if c.current == t.node {
		c.current = t.node.parent
	}
}

// Child nests a timer under t regardless of which timer is running.
func (t *timingTimer) Child(name string) Timer {
	c := t.collector
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: c.now(), parent: t.node}
	t.node.children = append(t.node.children, node)

	return &timingTimer{collector: c, node: node}
}
