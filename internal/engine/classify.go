package engine

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type container struct {
	kind         containerKind
	expectingKey bool
}

// Classifier tracks open containers for a decoder that reports object keys
// and string values alike, so drivers can tell them apart.
type Classifier struct {
	stack []container
}

// Open records a '{' or '['.
func (c *Classifier) Open(k Kind) {
	if k == KindBeginObject {
		c.stack = append(c.stack, container{kind: kindObject, expectingKey: true})
		return
	}
	c.stack = append(c.stack, container{kind: kindArray})
}

// Close records a '}' or ']'. The closed container counts as a value of its
// parent.
func (c *Classifier) Close() {
	if n := len(c.stack); n > 0 {
		c.stack = c.stack[:n-1]
	}
	c.valueDone()
}

// String classifies a decoded string as a key or a string value.
func (c *Classifier) String() Kind {
	if n := len(c.stack); n > 0 {
		top := &c.stack[n-1]
		if top.kind == kindObject && top.expectingKey {
			top.expectingKey = false
			return KindKey
		}
	}
	c.valueDone()
	return KindString
}

// Scalar records a non-string scalar value.
func (c *Classifier) Scalar() { c.valueDone() }

// Depth returns the number of open containers.
func (c *Classifier) Depth() int { return len(c.stack) }

func (c *Classifier) valueDone() {
	if n := len(c.stack); n > 0 {
		top := &c.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
