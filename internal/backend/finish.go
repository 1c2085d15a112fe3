package backend

import (
	"fmt"
	"strings"

	"pixelmill/internal/item"
	"pixelmill/internal/sniff"
)

// InfoMinified and friends are the metadata keys backends stamp on their
// output for provenance tracking.
const (
	InfoMinified    = "minified"
	InfoGenerated   = "generated"
	InfoMinimizedBy = "minimizedBy"
	InfoGeneratedBy = "generatedBy"
)

// FinishMinify builds the output item for a minify step. When the encoded
// bytes sniff as a different format than the input filename declares, the
// step is a contract violation: a warning lands on the input item and no
// output is produced. Remote locators skip the comparison.
func FinishMinify(in *item.Item, encoded []byte, backendName string) *item.Item {
	detected, ok := sniff.Detect(encoded)
	if ok && !item.IsRemote(in.Filename) {
		declared := declaredExtension(in.Filename)
		if declared != "" && detected.Extension != declared {
			in.AddWarning(fmt.Sprintf(
				"%s: minify produced %q for an input declared as %q; use the generate variant to change formats",
				backendName, detected.Extension, declared))
			return nil
		}
	}
	out := in.Clone()
	out.Data = encoded
	out.MergeInfo(map[string]any{InfoMinified: true})
	out.AppendInfoString(InfoMinimizedBy, backendName)
	return out
}

// FinishGenerate builds the output item for a generate step, renaming the
// filename extension to the format the sniffer observed in the encoded
// bytes (falling back to the requested target when sniffing is unable to
// classify the output).
func FinishGenerate(in *item.Item, encoded []byte, backendName, targetExt string) *item.Item {
	ext := targetExt
	if detected, ok := sniff.Detect(encoded); ok {
		ext = detected.Extension
	}
	out := in.Clone()
	if ext != "" {
		out.Filename = item.ReplaceExtension(in.Filename, ext)
	}
	out.Data = encoded
	out.MergeInfo(map[string]any{InfoGenerated: true})
	out.AppendInfoString(InfoGeneratedBy, backendName)
	return out
}

// RecordFailure captures an external encoder fault as an item-level error.
func RecordFailure(in *item.Item, backendName string, err error) {
	in.AddError(fmt.Sprintf("%s: %v", backendName, err))
}

// declaredExtension extracts the lowercased extension the filename claims,
// normalized to the sniffer's vocabulary.
func declaredExtension(filename string) string {
	base := filename
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	sep := strings.LastIndexByte(base, '/')
	dot := strings.LastIndexByte(base, '.')
	if dot <= sep {
		return ""
	}
	ext := strings.ToLower(base[dot+1:])
	switch ext {
	case "jpeg", "jpe":
		return "jpg"
	case "tiff":
		return "tif"
	}
	return ext
}
