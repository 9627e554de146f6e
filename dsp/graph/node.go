package graph

// Node is an element of the audio graph.
type Node interface {
	// Context returns the context the node belongs to.
	Context() *Context
	// Connect routes the node output into dst.
	Connect(dst Node) error
	// ConnectParam routes the node output into an automatable parameter.
	ConnectParam(p *Param) error
	// Disconnect removes every outgoing connection. It is idempotent.
	Disconnect()
	// InputCount returns the number of nodes connected into this node.
	InputCount() int
	// Connected reports whether the node has any outgoing connection.
	Connected() bool

	base() *node
	process()
}

type edge struct {
	node  Node
	param *Param
}

// node carries the connection bookkeeping shared by every Node.
type node struct {
	ctx    *Context
	self   Node
	inputs []Node
	outs   []edge

	out      Block
	mix      Block
	rendered int64
	busy     bool
}

func (n *node) init(ctx *Context, self Node) {
	n.ctx = ctx
	n.self = self
	n.out = newBlock(ctx.cfg.BlockSize)
	n.mix = newBlock(ctx.cfg.BlockSize)
}

func (n *node) base() *node { return n }

func (n *node) Context() *Context { return n.ctx }

func (n *node) Connect(dst Node) error {
	if dst == nil || dst.Context() != n.ctx {
		return ErrContextMismatch
	}
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	for _, e := range n.outs {
		if e.node == dst {
			return nil
		}
	}
	n.outs = append(n.outs, edge{node: dst})
	d := dst.base()
	d.inputs = append(d.inputs, n.self)
	return nil
}

func (n *node) ConnectParam(p *Param) error {
	if p == nil || p.ctx != n.ctx {
		return ErrContextMismatch
	}
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	for _, e := range n.outs {
		if e.param == p {
			return nil
		}
	}
	n.outs = append(n.outs, edge{param: p})
	p.inputs = append(p.inputs, n.self)
	return nil
}

func (n *node) Disconnect() {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()

	for _, e := range n.outs {
		if e.param != nil {
			e.param.inputs = removeNode(e.param.inputs, n.self)
			continue
		}
		d := e.node.base()
		d.inputs = removeNode(d.inputs, n.self)
	}
	n.outs = nil
}

func (n *node) InputCount() int {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	return len(n.inputs)
}

func (n *node) Connected() bool {
	n.ctx.mu.Lock()
	defer n.ctx.mu.Unlock()
	return len(n.outs) > 0
}

func removeNode(list []Node, target Node) []Node {
	out := list[:0]
	for _, v := range list {
		if v != target {
			out = append(out, v)
		}
	}
	for i := len(out); i < len(list); i++ {
		list[i] = nil
	}
	return out
}

// Destination is the stereo sink of a Context.
type Destination struct {
	node
}

// Connect always fails: the destination has no output.
func (d *Destination) Connect(Node) error { return ErrNoOutput }

// ConnectParam always fails: the destination has no output.
func (d *Destination) ConnectParam(*Param) error { return ErrNoOutput }

func (d *Destination) process() {
	d.ctx.mixInputs(&d.node, &d.out)
	d.out.upmix()
}
