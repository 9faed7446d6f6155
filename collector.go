package samplecheck

// Collector accumulates diagnostics in emission order. It is not safe for
// concurrent use; each runner owns one.
type Collector struct {
	diags Diagnostics
}

// Add appends d.
func (c *Collector) Add(d Diagnostic) { c.diags = append(c.diags, d) }

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int { return len(c.diags) }

// Diagnostics returns a copy of the collected diagnostics.
func (c *Collector) Diagnostics() Diagnostics {
	if len(c.diags) == 0 {
		return nil
	}
	out := make(Diagnostics, len(c.diags))
	copy(out, c.diags)
	return out
}

// Drain returns everything collected so far and empties the collector.
func (c *Collector) Drain() Diagnostics {
	out := c.diags
	c.diags = nil
	return out
}

// Err returns the collected diagnostics as an error, or nil when empty.
func (c *Collector) Err() error {
	if len(c.diags) == 0 {
		return nil
	}
	return c.Diagnostics()
}
