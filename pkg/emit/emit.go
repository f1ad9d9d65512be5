// Package emit defines the three semantic packet kinds the Touchstone
// parser publishes to its consumer, and the consumer interface itself.
// Emitted packets are views into parser-owned storage: the consumer
// must copy anything it needs to retain past the callback return.
package emit

// Kind tags the semantic meaning of a Packet.
type Kind int

const (
	KindReference Kind = iota
	KindFrequency
	KindParameter
	KindNoise
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindFrequency:
		return "frequency"
	case KindParameter:
		return "parameter"
	case KindNoise:
		return "noise"
	default:
		return "unknown"
	}
}

// Packet is one typed vector published to the consumer.
type Packet struct {
	Kind      Kind
	ParamKind byte // 'S','Y','Z','G','H' for KindParameter, 0 otherwise
	Ports     int
	Values    []float64
}

// Consumer receives packets from a parsing session, in calling order.
// Begin is invoked once at first output; End once at end-of-stream.
type Consumer interface {
	Begin(sessionID string)
	Packet(p Packet)
	End(sessionID string)
}

// NopConsumer implements Consumer by discarding everything. Useful in
// tests and as an embeddable default.
type NopConsumer struct{}

func (NopConsumer) Begin(string)  {}
func (NopConsumer) Packet(Packet) {}
func (NopConsumer) End(string)    {}

// Collector is a Consumer that records every packet it receives, for
// tests and simple offline tooling.
type Collector struct {
	Started   bool
	Ended     bool
	Packets   []Packet
	SessionID string
}

func (c *Collector) Begin(id string) { c.Started = true; c.SessionID = id }
func (c *Collector) Packet(p Packet) {
	cp := p
	cp.Values = append([]float64(nil), p.Values...)
	c.Packets = append(c.Packets, cp)
}
func (c *Collector) End(id string) { c.Ended = true }
