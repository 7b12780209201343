package voice

import "time"

// meterInterval approximates animation-frame cadence for UI pulsing.
const meterInterval = 50 * time.Millisecond

// runLevelMeter publishes a normalized input amplitude in [0,1] while the
// analyser tap is live. It never emits after the token goes stale: the
// staleness check happens before each publish, so no tick outlives the
// session or the listen cycle it belongs to.
func (s *Session) runLevelMeter(gen uint64, analyser Analyser) {
	ticker := time.NewTicker(meterInterval)
	defer ticker.Stop()
	for range ticker.C {
		if s.tok.Stale(gen) {
			return
		}
		data := analyser.Snapshot()
		if data == nil {
			// Tap closed underneath us; the capture cycle is over.
			return
		}
		if len(data) == 0 {
			continue
		}
		sum := 0
		for _, v := range data {
			sum += int(v)
		}
		s.publishLevel(float64(sum) / float64(len(data)) / 255)
	}
}
