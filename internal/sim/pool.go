package sim

import (
	"sync"

	"github.com/pkoval/fluidlab/internal/fluid"
)

// ParticlePool recycles snapshot buffers so render loops that copy the
// collection every frame stay allocation-free once warm.
type ParticlePool struct {
	pool sync.Pool
}

func NewParticlePool(capacity int) *ParticlePool {
	return &ParticlePool{
		pool: sync.Pool{
			New: func() interface{} {
				return make([]fluid.Particle, 0, capacity)
			},
		},
	}
}

func (p *ParticlePool) Get() []fluid.Particle {
	return p.pool.Get().([]fluid.Particle)[:0]
}

func (p *ParticlePool) Put(ps []fluid.Particle) {
	if ps == nil {
		return
	}
	p.pool.Put(ps[:0])
}
