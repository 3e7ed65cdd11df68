package speech

import (
	"encoding/binary"
	"math"
)

// RMS returns the root-mean-square energy of 16-bit signed little-endian PCM,
// in sample units (0 to 32 767). It returns 0 for buffers shorter than one
// sample.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := range n {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

// DefaultSilenceRMS is the energy below which a recording is treated as
// silence. 300 is near-silence for 16-bit audio.
const DefaultSilenceRMS = 300.0

// IsSilent reports whether audio's energy is below threshold.
func IsSilent(audio Audio, threshold float64) bool {
	return RMS(audio.PCM) < threshold
}
