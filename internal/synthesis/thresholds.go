package synthesis

import "feedsight/internal/config"

// Thresholds are the shares (0..1) and diversity levels that trigger insight
// and recommendation rules.
type Thresholds struct {
	DominantShare  float64
	JoyInsight     float64
	SadnessInsight float64
	AngerInsight   float64
	FearInsight    float64
	HighDiversity  float64
	LowDiversity   float64
	TopThemeShare  float64

	AngerRecommend   float64
	SadnessRecommend float64
	FearRecommend    float64
	JoyRecommend     float64

	// TopThemes is how many themes are listed by name.
	TopThemes int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		DominantShare:    0.50,
		JoyInsight:       0.40,
		SadnessInsight:   0.25,
		AngerInsight:     0.20,
		FearInsight:      0.20,
		HighDiversity:    0.75,
		LowDiversity:     0.30,
		TopThemeShare:    0.40,
		AngerRecommend:   0.25,
		SadnessRecommend: 0.20,
		FearRecommend:    0.15,
		JoyRecommend:     0.60,
		TopThemes:        3,
	}
}

// ThresholdsFrom overlays the non-zero values of cfg on the defaults.
func ThresholdsFrom(cfg config.ThresholdsConfig) Thresholds {
	t := DefaultThresholds()
	set := func(dst *float64, v float64) {
		if v > 0 {
			*dst = v
		}
	}
	set(&t.DominantShare, cfg.DominantShare)
	set(&t.JoyInsight, cfg.JoyInsight)
	set(&t.SadnessInsight, cfg.SadnessInsight)
	set(&t.AngerInsight, cfg.AngerInsight)
	set(&t.FearInsight, cfg.FearInsight)
	set(&t.HighDiversity, cfg.HighDiversity)
	set(&t.LowDiversity, cfg.LowDiversity)
	set(&t.TopThemeShare, cfg.TopThemeShare)
	set(&t.AngerRecommend, cfg.AngerRecommend)
	set(&t.SadnessRecommend, cfg.SadnessRecommend)
	set(&t.FearRecommend, cfg.FearRecommend)
	set(&t.JoyRecommend, cfg.JoyRecommend)
	if cfg.TopThemesReported > 0 {
		t.TopThemes = cfg.TopThemesReported
	}
	return t
}
