package model

// VideoTier is one encoding tier of a platform-hosted video. The progressive
// tiers form a strict total order; the adaptive/live tiers exist on the wire
// but never take part in quality ranking.
type VideoTier string

const (
	TierUltraHD VideoTier = "ultra_hd"
	TierQuadHD  VideoTier = "quad_hd"
	TierFullHD  VideoTier = "full_hd"
	TierHigh    VideoTier = "high"
	TierMedium  VideoTier = "medium"
	TierLow     VideoTier = "low"
	TierTiny    VideoTier = "tiny"
	TierLowest  VideoTier = "lowest"

	// Adaptive and live tiers, excluded from ranking.
	TierHLS              VideoTier = "hls"
	TierDash             VideoTier = "dash"
	TierDashUni          VideoTier = "dash_uni"
	TierLiveHLS          VideoTier = "live_hls"
	TierLiveDash         VideoTier = "live_dash"
	TierLiveCmaf         VideoTier = "live_cmaf"
	TierLivePlaybackHLS  VideoTier = "live_playback_hls"
	TierLivePlaybackDash VideoTier = "live_playback_dash"
	TierLiveOndemandHLS  VideoTier = "live_ondemand_hls"
)

// tierRank orders the progressive tiers, highest first. Tiers absent from the
// map are adaptive/live and are never selected.
var tierRank = map[VideoTier]int{
	TierUltraHD: 8,
	TierQuadHD:  7,
	TierFullHD:  6,
	TierHigh:    5,
	TierMedium:  4,
	TierLow:     3,
	TierTiny:    2,
	TierLowest:  1,
}

// Rank returns the tier's position in the quality order (higher is better)
// and whether the tier participates in ranking at all.
func (t VideoTier) Rank() (int, bool) {
	r, ok := tierRank[t]
	return r, ok
}

// Rendition is one downloadable variant of a platform video.
type Rendition struct {
	Tier VideoTier
	URL  string
}

// BestRendition picks the rendition closest to preferred without exceeding
// it. When nothing at or below preferred has a URL, the lowest tier above
// preferred wins. Renditions with empty URLs and adaptive/live tiers never
// match. Returns nil when no rendition qualifies.
func BestRendition(renditions []Rendition, preferred VideoTier) *Rendition {
	want, ok := preferred.Rank()
	if !ok {
		return nil
	}

	var below, above *Rendition
	var belowRank, aboveRank int
	for i := range renditions {
		r := &renditions[i]
		if r.URL == "" {
			continue
		}
		rank, ok := r.Tier.Rank()
		if !ok {
			continue
		}
		if rank <= want {
			if below == nil || rank > belowRank {
				below, belowRank = r, rank
			}
		} else {
			if above == nil || rank < aboveRank {
				above, aboveRank = r, rank
			}
		}
	}
	if below != nil {
		return below
	}
	return above
}

// QualityOption is the user-facing --preferred-video-quality value.
type QualityOption string

const (
	QualitySmallestSize QualityOption = "smallest_size"
	QualityLow          QualityOption = "low"
	QualityMedium       QualityOption = "medium"
	QualityHigh         QualityOption = "high"
	QualityHighest      QualityOption = "highest"
)

// Tier maps the CLI option onto the rendition tier handed to the ranker.
func (q QualityOption) Tier() VideoTier {
	switch q {
	case QualitySmallestSize:
		return TierLowest
	case QualityLow:
		return TierLow
	case QualityMedium:
		return TierMedium
	case QualityHigh:
		return TierHigh
	case QualityHighest:
		return TierUltraHD
	default:
		return TierMedium
	}
}

// Valid reports whether q is one of the known options.
func (q QualityOption) Valid() bool {
	switch q {
	case QualitySmallestSize, QualityLow, QualityMedium, QualityHigh, QualityHighest:
		return true
	}
	return false
}
