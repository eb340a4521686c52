package fluid

import "testing"

func benchWorld(n int) *World {
	p := DefaultParams()
	p.ParticleCount = n
	w := New(p, DefaultWidth, DefaultHeight, 42)
	w.Init()
	return w
}

func BenchmarkTick_100(b *testing.B) {
	w := benchWorld(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Tick(Pointer{})
	}
}

func BenchmarkTick_500(b *testing.B) {
	w := benchWorld(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Tick(Pointer{})
	}
}

func BenchmarkTickPointer_500(b *testing.B) {
	w := benchWorld(500)
	ptr := Pointer{X: DefaultWidth / 2, Y: DefaultHeight / 2, Active: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Tick(ptr)
	}
}

func BenchmarkDensityPass_500(b *testing.B) {
	w := benchWorld(500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.updateDensity()
	}
}
