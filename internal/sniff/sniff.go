package sniff

import (
	"bytes"
	"strings"
)

// Result describes a recognized payload format.
type Result struct {
	Extension string
	MIME      string
}

// rule is one entry in the detection cascade. A rule matches when pattern
// (under the optional mask) equals the payload bytes at offset. Rules with a
// dispatch hook perform a second-level inspection after the outer signature
// matches; a dispatch that declines lets the cascade continue.
type rule struct {
	offset   int
	pattern  []byte
	mask     []byte
	ext      string
	mime     string
	dispatch func(buf []byte) (Result, bool)
}

// Cascade order is significant. Camera raw formats precede generic TIFF
// because they share its header bytes; NEF variants precede the big-endian
// TIFF rule for the same reason; the JPEG-2000 container precedes nothing
// that could shadow it but its brands must resolve inside the rule.
var rules = []rule{
	{pattern: []byte{0xFF, 0xD8, 0xFF}, ext: "jpg", mime: "image/jpeg"},
	{pattern: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, dispatch: dispatchPNG},
	{pattern: []byte("GIF"), ext: "gif", mime: "image/gif"},
	{offset: 8, pattern: []byte("WEBP"), ext: "webp", mime: "image/webp"},
	{pattern: []byte("FLIF"), ext: "flif", mime: "image/flif"},

	// TIFF-headed camera raws, most specific first.
	{
		pattern: []byte{0x49, 0x49, 0x2A, 0x00, 0x00, 0x00, 0x00, 0x00, 0x43, 0x52},
		mask:    []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF},
		ext:     "cr2", mime: "image/x-canon-cr2",
	},
	{pattern: []byte{0x49, 0x49, 0x52, 0x4F, 0x08, 0x00, 0x00, 0x00}, ext: "orf", mime: "image/x-olympus-orf"},
	{pattern: []byte{0x49, 0x49, 0x55, 0x00, 0x18, 0x00, 0x00, 0x00, 0x88, 0xE7, 0x74, 0xD8}, ext: "rw2", mime: "image/x-panasonic-rw2"},
	{pattern: []byte("FUJIFILMCCD-RAW"), ext: "raf", mime: "image/x-fujifilm-raf"},
	{pattern: []byte{0x49, 0x49, 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00, 0x2D, 0x00, 0xFE, 0x00}, ext: "dng", mime: "image/x-adobe-dng"},
	{
		// Sony ARW: little-endian TIFF whose first IFD entry tag byte sits
		// in the 0x10 nibble range.
		pattern: []byte{0x49, 0x49, 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00, 0x10},
		mask:    []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xF0},
		ext:     "arw", mime: "image/x-sony-arw",
	},
	{pattern: []byte{0x4D, 0x4D, 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08, 0x1C, 0x00, 0xFE, 0x00}, ext: "nef", mime: "image/x-nikon-nef"},
	{pattern: []byte{0x4D, 0x4D, 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08, 0x1F, 0x00, 0x0B, 0x00}, ext: "nef", mime: "image/x-nikon-nef"},
	{pattern: []byte{0x49, 0x49, 0x2A, 0x00}, ext: "tif", mime: "image/tiff"},
	{pattern: []byte{0x4D, 0x4D, 0x00, 0x2A}, ext: "tif", mime: "image/tiff"},

	{pattern: []byte("BM"), ext: "bmp", mime: "image/bmp"},
	{pattern: []byte{0x49, 0x49, 0xBC}, ext: "jxr", mime: "image/vnd.ms-photo"},
	{pattern: []byte("8BPS"), ext: "psd", mime: "image/vnd.adobe.photoshop"},
	{offset: 4, pattern: []byte("ftyp"), dispatch: dispatchISOBMFF},
	{pattern: []byte{0x00, 0x00, 0x01, 0x00}, ext: "ico", mime: "image/x-icon"},
	{pattern: []byte{0x00, 0x00, 0x02, 0x00}, ext: "cur", mime: "image/x-icon"},
	{pattern: []byte{0x42, 0x50, 0x47, 0xFB}, ext: "bpg", mime: "image/bpg"},
	{pattern: []byte{0x00, 0x00, 0x00, 0x0C, 0x6A, 0x50, 0x20, 0x20, 0x0D, 0x0A, 0x87, 0x0A}, dispatch: dispatchJP2},
	{pattern: []byte{0xFF, 0x0A}, ext: "jxl", mime: "image/jxl"},
	{pattern: []byte{0x00, 0x00, 0x00, 0x0C, 0x4A, 0x58, 0x4C, 0x20, 0x0D, 0x0A, 0x87, 0x0A}, ext: "jxl", mime: "image/jxl"},
	{pattern: []byte{0xAB, 0x4B, 0x54, 0x58, 0x20, 0x31, 0x31, 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}, ext: "ktx", mime: "image/ktx"},
}

// Detect classifies buf by content. It reports false for buffers shorter
// than two bytes and for payloads no rule recognizes.
func Detect(buf []byte) (Result, bool) {
	if len(buf) < 2 {
		return Result{}, false
	}
	for i := range rules {
		r := &rules[i]
		if !matches(buf, r.offset, r.pattern, r.mask) {
			continue
		}
		if r.dispatch != nil {
			if res, ok := r.dispatch(buf); ok {
				return res, true
			}
			continue
		}
		return Result{Extension: r.ext, MIME: r.mime}, true
	}
	return Result{}, false
}

func matches(buf []byte, offset int, pattern, mask []byte) bool {
	if offset+len(pattern) > len(buf) {
		return false
	}
	for i, p := range pattern {
		b := buf[offset+i]
		if mask != nil {
			b &= mask[i]
		}
		if b != p {
			return false
		}
	}
	return true
}

// dispatchPNG reclassifies a PNG-signed payload as APNG when an acTL chunk
// precedes the first IDAT chunk. A payload with no locatable IDAT stays a
// plain PNG; the heuristic is not hardened against malformed chunk layouts.
func dispatchPNG(buf []byte) (Result, bool) {
	png := Result{Extension: "png", MIME: "image/png"}
	if len(buf) <= 8 {
		return png, true
	}
	idat := bytes.Index(buf[8:], []byte("IDAT"))
	if idat < 0 {
		return png, true
	}
	if bytes.Contains(buf[8:8+idat], []byte("acTL")) {
		return Result{Extension: "apng", MIME: "image/apng"}, true
	}
	return png, true
}

// isoBrands maps ISO-BMFF major brands to their classification. Unknown
// brands decline so the cascade continues (and typically ends unmatched).
var isoBrands = map[string]Result{
	"avif": {Extension: "avif", MIME: "image/avif"},
	"mif1": {Extension: "heic", MIME: "image/heif"},
	"msf1": {Extension: "heic", MIME: "image/heif-sequence"},
	"heic": {Extension: "heic", MIME: "image/heic"},
	"heix": {Extension: "heic", MIME: "image/heic"},
	"hevc": {Extension: "heic", MIME: "image/heic-sequence"},
	"hevx": {Extension: "heic", MIME: "image/heic-sequence"},
}

func dispatchISOBMFF(buf []byte) (Result, bool) {
	if len(buf) < 12 {
		return Result{}, false
	}
	// The major brand is four ASCII characters; reject payloads whose
	// first brand byte falls outside the printable ASCII range.
	if buf[8]&0x60 == 0 {
		return Result{}, false
	}
	brand := strings.TrimRight(string(buf[8:12]), "\x00 ")
	res, ok := isoBrands[brand]
	return res, ok
}

var jp2Brands = map[string]Result{
	"jp2 ": {Extension: "jp2", MIME: "image/jp2"},
	"jpx ": {Extension: "jpx", MIME: "image/jpx"},
	"jpm ": {Extension: "jpm", MIME: "image/jpm"},
	"mjp2": {Extension: "mj2", MIME: "image/mj2"},
}

func dispatchJP2(buf []byte) (Result, bool) {
	if len(buf) < 24 {
		return Result{}, false
	}
	res, ok := jp2Brands[string(buf[20:24])]
	return res, ok
}
