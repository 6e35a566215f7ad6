// bus.go
package bus

import (
	"sync"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a hierarchical path of string tokens, e.g. {"imu","cap","accel"}.
// Subscription topics may use "+" to match exactly one token and "#" as the
// final token to match any remainder (including none).
type Topic []string

// T builds a Topic from its tokens.
func T(parts ...string) Topic { return Topic(parts) }

const (
	wildOne  = "+"
	wildRest = "#"
)

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
}

// NewMessage constructs a message. Publishing a retained message with a nil
// payload clears the retained slot for that topic.
func NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection // owning connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

// Subscriptions live at the node their (possibly wildcarded) topic spells out;
// retained messages live at the node of their concrete publish topic.
type node struct {
	children map[string]*node
	subs     []*Subscription
	retained *Message
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu   sync.Mutex
	root *node
	qLen int
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8 // safe default
	}
	return &Bus{
		root: &node{},
		qLen: queueLen,
	}
}

// addSubscription inserts a subscription into the trie and delivers any
// retained messages its topic matches.
func (b *Bus) addSubscription(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range topic {
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	n.subs = append(n.subs, sub)

	collectRetained(b.root, topic, func(m *Message) {
		deliver(sub, m)
	})
}

// Publish delivers a message to all subscribers whose topics match.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	matchSubs(b.root, msg.Topic, func(sub *Subscription) {
		deliver(sub, msg)
	})

	if msg.Retained {
		b.storeRetained(msg)
	}
}

// deliver drops the oldest queued message when the subscriber queue is full.
func deliver(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
	default:
		select {
		case <-sub.ch:
		default:
		}
		sub.ch <- msg
	}
}

// matchSubs walks the trie calling fn for every subscription matching tokens.
func matchSubs(n *node, tokens []string, fn func(*Subscription)) {
	if n == nil {
		return
	}
	// "#" at any depth matches the remainder, including an empty one.
	if h, ok := n.children[wildRest]; ok {
		for _, s := range h.subs {
			fn(s)
		}
	}
	if len(tokens) == 0 {
		for _, s := range n.subs {
			fn(s)
		}
		return
	}
	if c, ok := n.children[tokens[0]]; ok {
		matchSubs(c, tokens[1:], fn)
	}
	if p, ok := n.children[wildOne]; ok {
		matchSubs(p, tokens[1:], fn)
	}
}

// collectRetained calls fn for every retained message matching pattern.
func collectRetained(n *node, pattern Topic, fn func(*Message)) {
	if n == nil {
		return
	}
	if len(pattern) == 0 {
		if n.retained != nil {
			fn(n.retained)
		}
		return
	}
	switch pattern[0] {
	case wildRest:
		walkRetained(n, fn)
	case wildOne:
		for _, c := range n.children {
			collectRetained(c, pattern[1:], fn)
		}
	default:
		if c, ok := n.children[pattern[0]]; ok {
			collectRetained(c, pattern[1:], fn)
		}
	}
}

// walkRetained visits every retained message at n and below.
func walkRetained(n *node, fn func(*Message)) {
	if n.retained != nil {
		fn(n.retained)
	}
	for _, c := range n.children {
		walkRetained(c, fn)
	}
}

// storeRetained records or clears the retained message at the concrete topic.
func (b *Bus) storeRetained(msg *Message) {
	n := b.root
	for _, tok := range msg.Topic {
		if n.children == nil {
			n.children = make(map[string]*node)
		}
		child, ok := n.children[tok]
		if !ok {
			child = &node{}
			n.children[tok] = child
		}
		n = child
	}
	if msg.Payload == nil {
		n.retained = nil
	} else {
		n.retained = msg
	}
}

// unsubscribe removes a subscription from the trie.
func (b *Bus) unsubscribe(topic Topic, sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	var stack []*node
	for _, t := range topic {
		if n.children == nil {
			return
		}
		child, ok := n.children[t]
		if !ok {
			return
		}
		stack = append(stack, n)
		n = child
	}

	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}

	// Prune empty nodes.
	for i := len(topic) - 1; i >= 0; i-- {
		parent := stack[i]
		key := topic[i]
		child := parent.children[key]
		if len(child.subs) == 0 && len(child.children) == 0 && child.retained == nil {
			delete(parent.children, key)
		} else {
			break
		}
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	subs []*Subscription
	mu   sync.Mutex
	id   string // connection name, for diagnostics
}

// NewConnection creates a new connection bound to this bus.
func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{
		bus: b,
		id:  id,
	}
}

// Publish sends a message via the bus.
func (c *Connection) Publish(msg *Message) {
	c.bus.Publish(msg)
}

// Subscribe registers a subscription owned by this connection.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.bus.addSubscription(topic, sub)
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.bus.unsubscribe(sub.topic, sub)
	c.mu.Lock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	close(sub.ch)
}

// Disconnect closes all subscriptions and clears them.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()

	for _, sub := range subs {
		c.bus.unsubscribe(sub.topic, sub)
		close(sub.ch)
	}
}
