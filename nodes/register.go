package nodes

import "github.com/hdelmont/mediagraph/graph"

// Register adds every node type to the registry under its canonical name,
// plus "Mediagraph_"-prefixed aliases so graphs saved against the prefixed
// names from earlier releases keep loading.
func Register(r *graph.Registry, d *Deps) error {
	factories := map[string]graph.Factory{
		"SeedanceImageToVideo": func() graph.Node { return NewSeedanceImageToVideo(d) },
		"FluxKontextPro":       func() graph.Node { return NewFluxKontextPro(d) },
		"FluxProUltra":         func() graph.Node { return NewFluxProUltra(d) },
		"FalAudioGeneration":   func() graph.Node { return NewFalAudioGeneration(d) },
		"OllamaMusicPrompt":    func() graph.Node { return NewOllamaMusicPrompt(d) },
		"OpenAIVisionQC":       func() graph.Node { return NewOpenAIVisionQC(d) },
		"DownloadVideo":        func() graph.Node { return NewDownloadVideo(d) },
		"PreviewVideo":         func() graph.Node { return NewPreviewVideo(d) },
		"StitchVideos":         func() graph.Node { return NewStitchVideos(d) },
		"CombineVideoAudio":    func() graph.Node { return NewCombineVideoAudio(d) },
		"CyclingSwitch":        func() graph.Node { return NewCyclingSwitch() },
		"RandomSwitch":         func() graph.Node { return NewRandomSwitch() },
		"CyclingSwitchAny":     func() graph.Node { return NewCyclingSwitchAny() },
		"RandomSwitchAny":      func() graph.Node { return NewRandomSwitchAny() },
	}
	for name, factory := range factories {
		if err := r.Register(name, factory); err != nil {
			return err
		}
	}
	for name := range factories {
		if err := r.Alias("Mediagraph_"+name, name); err != nil {
			return err
		}
	}
	return nil
}
