package nodes

import (
	"math"
	"math/rand"
	"strings"

	"github.com/hdelmont/mediagraph/fal"
)

// falClient builds a client for one invocation. A non-empty api_key input
// overrides the configured credential, so a graph can carry its own key.
func (d *Deps) falClient(apiKeyOverride string) *fal.Client {
	cfg := d.Config.Fal
	if key := strings.TrimSpace(apiKeyOverride); key != "" {
		cfg.APIKey = key
	}
	return fal.NewClient(cfg, d.Logger)
}

// randomSeed64 draws a seed for providers that treat -1 as "pick one".
func randomSeed64() int64 {
	return rand.Int63()
}

// randomFluxSeed draws a seed in [1, 2147483647]; flux treats 0 as unset.
func randomFluxSeed() int {
	return rand.Intn(2147483647) + 1
}

// standardRatios are the aspect ratios the flux API accepts, keyed by their
// numeric value for nearest-match lookup.
var standardRatios = []struct {
	value float64
	name  string
}{
	{1.0, "1:1"},
	{1.77, "16:9"},
	{2.33, "21:9"},
	{1.5, "3:2"},
	{0.67, "2:3"},
	{1.33, "4:3"},
	{0.75, "3:4"},
	{0.56, "9:16"},
	{0.43, "9:21"},
}

// closestAspectRatio maps input dimensions to the nearest standard ratio.
func closestAspectRatio(width, height int) string {
	if height <= 0 {
		return "1:1"
	}
	ratio := float64(width) / float64(height)
	best := standardRatios[0]
	for _, candidate := range standardRatios[1:] {
		if math.Abs(candidate.value-ratio) < math.Abs(best.value-ratio) {
			best = candidate
		}
	}
	return best.name
}
