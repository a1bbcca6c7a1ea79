// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parse

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/marovi/papertrans/pkg/types"
)

// extractImages pulls embedded images out of the PDF one page at a time,
// so each asset knows the page it belongs to. pdfcpu writes image files
// into a scratch directory; extraction order within a page follows the
// file names pdfcpu assigns, which track object order in the page stream.
//
// pdfcpu does not report placement rectangles, so assets leave their
// bounding box zero; the image mapper falls back to per-page index
// pairing for such assets.
func extractImages(pdfPath string, pageCount int) []types.ImageAsset {
	scratch, err := os.MkdirTemp("", "papertrans-images-")
	if err != nil {
		return nil
	}
	defer os.RemoveAll(scratch)

	var assets []types.ImageAsset
	for page := 1; page <= pageCount; page++ {
		pageDir := filepath.Join(scratch, strconv.Itoa(page))
		if err := os.MkdirAll(pageDir, 0o755); err != nil {
			continue
		}
		if err := api.ExtractImagesFile(pdfPath, pageDir, []string{strconv.Itoa(page)}, nil); err != nil {
			continue // best-effort: a page pdfcpu cannot decode loses its figures
		}

		entries, err := os.ReadDir(pageDir)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for i, name := range names {
			data, err := os.ReadFile(filepath.Join(pageDir, name))
			if err != nil || len(data) == 0 {
				continue
			}
			format := strings.TrimPrefix(filepath.Ext(name), ".")
			if format == "" {
				format = "png"
			}
			assets = append(assets, types.ImageAsset{
				Page:   page,
				Index:  i,
				Format: format,
				Data:   data,
			})
		}
	}
	return assets
}
