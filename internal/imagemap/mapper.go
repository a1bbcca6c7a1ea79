// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package imagemap associates extracted images with their captions by a
// proximity heuristic, producing the placement index the renderer walks.
package imagemap

import (
	"github.com/marovi/papertrans/pkg/types"
)

// Build derives the ImageMap for one parsed document. For an image with
// known geometry, the nearest caption block below it on the same page
// within captionWindow points wins; ties break on smaller vertical
// distance, then on earlier ordinal. Images without geometry (the pdfcpu
// extraction path) pair with the i-th unclaimed caption of their page in
// extraction order. An image with no candidate caption is kept as
// uncaptioned and anchored after the last text block of its page.
//
// Build is a pure function of its inputs: running it twice on the same
// parser output yields an identical map, and every image appears exactly
// once. Empty inputs produce an empty map.
func Build(blocks []types.TextBlock, images []types.ImageAsset, captionWindow float64) types.ImageMap {
	if len(images) == 0 {
		return types.ImageMap{}
	}

	captionsByPage := make(map[int][]types.TextBlock)
	lastOrdinalByPage := make(map[int]int)
	lastOrdinal := -1
	for _, b := range blocks {
		if b.Kind == types.BlockCaption {
			captionsByPage[b.Page] = append(captionsByPage[b.Page], b)
		}
		lastOrdinalByPage[b.Page] = b.Ordinal
		lastOrdinal = b.Ordinal
	}

	claimed := make(map[int]bool) // caption ordinal -> already mapped

	m := make(types.ImageMap, 0, len(images))
	for i, img := range images {
		caption, ok := matchCaption(img, captionsByPage[img.Page], claimed, captionWindow)
		if ok {
			claimed[caption] = true
			m = append(m, types.Placement{Image: i, Caption: caption, Anchor: caption})
			continue
		}

		anchor, ok := lastOrdinalByPage[img.Page]
		if !ok {
			// Page without text: fall back to the end of the document so
			// the image is kept rather than dropped.
			anchor = lastOrdinal
		}
		m = append(m, types.Placement{Image: i, Caption: -1, Anchor: anchor})
	}
	return m
}

// matchCaption picks the caption ordinal for one image, or ok=false.
func matchCaption(img types.ImageAsset, captions []types.TextBlock, claimed map[int]bool, window float64) (int, bool) {
	if img.Box.IsZero() {
		// No geometry: index pairing, first unclaimed caption on the page.
		for _, c := range captions {
			if !claimed[c.Ordinal] {
				return c.Ordinal, true
			}
		}
		return 0, false
	}

	best := -1
	bestDist := 0.0
	for _, c := range captions {
		if claimed[c.Ordinal] {
			continue
		}
		// A caption sits below its figure: its top edge at or under the
		// image's bottom edge, within the vertical window.
		dist := img.Box.Bottom() - c.Box.Top()
		if dist < 0 || dist > window {
			continue
		}
		if best == -1 || dist < bestDist || (dist == bestDist && c.Ordinal < best) {
			best = c.Ordinal
			bestDist = dist
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}
