package metrics

import "github.com/pkoval/fluidlab/internal/fluid"

// MaxSpeed samples the fastest particle each tick. Spikes betray
// near-coincident pairs before they become visible artifacts.
type MaxSpeed struct {
	last float64
}

func NewMaxSpeed() *MaxSpeed {
	return &MaxSpeed{}
}

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(ps []fluid.Particle, step int) {
	max := 0.0
	for _, p := range ps {
		if s := p.Speed(); s > max {
			max = s
		}
	}
	m.last = max
}

func (m *MaxSpeed) Value() float64 { return m.last }

func (m *MaxSpeed) Reset() { m.last = 0 }
