package analysis

import "testing"

func BenchmarkSpectralRMSEDB(b *testing.B) {
	a, c := benchmarkSignals(4096)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = spectralRMSEDB(a, c)
	}
}

func BenchmarkEstimateLagFFT(b *testing.B) {
	a, c := benchmarkSignals(48000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = estimateLag(a, c, 2400)
	}
}

func BenchmarkEstimateLagExhaustive(b *testing.B) {
	a, c := benchmarkSignals(48000)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = estimateLagExhaustive(a, c, 2400)
	}
}

func BenchmarkCompare(b *testing.B) {
	ref, cand := benchmarkSignals(48000 * 3)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Compare(ref, cand, 48000)
	}
}

func benchmarkSignals(n int) ([]float64, []float64) {
	return makeDecayNoise(48000, 1.8, float64(n)/48000, 1), makeDecayNoise(48000, 1.5, float64(n)/48000, 2)
}
