package audio

import "math"

// LevelMetrics summarizes the loudness of a sample buffer.
type LevelMetrics struct {
	RMSdBFS  float64
	PeakdBFS float64
	Samples  int
}

// Measure computes RMS and peak levels in dBFS over float32 samples in
// [-1, 1]. An empty buffer measures as -Inf on both.
func Measure(samples []float32) LevelMetrics {
	var peak, sumSquares float64
	for _, s := range samples {
		v := float64(s)
		abs := math.Abs(v)
		if abs > peak {
			peak = abs
		}
		sumSquares += v * v
	}

	if len(samples) == 0 {
		return LevelMetrics{RMSdBFS: math.Inf(-1), PeakdBFS: math.Inf(-1)}
	}

	rms := math.Sqrt(sumSquares / float64(len(samples)))
	return LevelMetrics{
		RMSdBFS:  amplitudeToDBFS(rms),
		PeakdBFS: amplitudeToDBFS(peak),
		Samples:  len(samples),
	}
}

// IsSilent reports whether the buffer is quiet enough to skip
// transcription. The peak gate sits 6 dB above the RMS threshold so a
// short click in an otherwise quiet recording still counts as silence.
func IsSilent(samples []float32, thresholdDBFS float64) (bool, LevelMetrics) {
	metrics := Measure(samples)

	if metrics.Samples == 0 {
		return true, metrics
	}
	if math.IsInf(metrics.RMSdBFS, -1) && math.IsInf(metrics.PeakdBFS, -1) {
		return true, metrics
	}

	peakGate := thresholdDBFS + 6
	return metrics.RMSdBFS <= thresholdDBFS && metrics.PeakdBFS <= peakGate, metrics
}

func amplitudeToDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20.0 * math.Log10(amplitude)
}
