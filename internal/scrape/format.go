package scrape

import "sort"

// extPreference is the container preference order used when the metadata
// backend reports multiple format variants.
var extPreference = []string{"mp4", "m4a", "webm", "ts"}

// SelectFormat picks exactly one variant from a backend format list. Buckets
// are tried in container preference order; within the first non-empty bucket
// the variants are ranked by (height, bitrate) descending with missing
// values treated as zero. When every bucket is empty the first variant in
// original order with a non-empty URL wins. Pure and deterministic.
func SelectFormat(variants []FormatVariant) (FormatVariant, bool) {
	for _, ext := range extPreference {
		bucket := make([]FormatVariant, 0, len(variants))
		for _, v := range variants {
			if v.Ext == ext && v.URL != "" {
				bucket = append(bucket, v)
			}
		}
		if len(bucket) == 0 {
			continue
		}
		sort.SliceStable(bucket, func(i, j int) bool {
			if bucket[i].Height != bucket[j].Height {
				return bucket[i].Height > bucket[j].Height
			}
			return bucket[i].Bitrate > bucket[j].Bitrate
		})
		return bucket[0], true
	}

	for _, v := range variants {
		if v.URL != "" {
			return v, true
		}
	}
	return FormatVariant{}, false
}

// descriptorForVariant builds the metadata-extract descriptor for a chosen
// variant.
func descriptorForVariant(v FormatVariant) SourceDescriptor {
	d := SourceDescriptor{
		Method:   MethodMetadataExtract,
		URL:      v.URL,
		Ext:      extFromString(v.Ext),
		FormatID: v.FormatID,
	}
	if v.Height > 0 || v.Bitrate > 0 {
		d.Quality = &QualityHint{Height: v.Height, Bitrate: v.Bitrate}
	}
	return d
}

func extFromString(s string) Ext {
	switch s {
	case "mp4":
		return ExtMP4
	case "m4a":
		return ExtM4A
	case "webm":
		return ExtWebM
	case "ts":
		return ExtTS
	case "m3u8", "m3u8_native", "hls":
		return ExtM3U8
	default:
		return ExtOther
	}
}
