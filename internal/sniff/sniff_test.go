package sniff

import (
	"bytes"
	"testing"
)

func isoBMFF(brand string) []byte {
	buf := []byte{0x00, 0x00, 0x00, 0x18}
	buf = append(buf, []byte("ftyp")...)
	buf = append(buf, []byte(brand)...)
	buf = append(buf, make([]byte, 12)...)
	return buf
}

func jp2Container(brand string) []byte {
	buf := []byte{0x00, 0x00, 0x00, 0x0C, 0x6A, 0x50, 0x20, 0x20, 0x0D, 0x0A, 0x87, 0x0A}
	buf = append(buf, []byte{0x00, 0x00, 0x00, 0x14}...)
	buf = append(buf, []byte("ftyp")...)
	buf = append(buf, []byte(brand)...)
	return buf
}

func pngChunks(chunks ...string) []byte {
	buf := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	for _, c := range chunks {
		buf = append(buf, 0x00, 0x00, 0x00, 0x04)
		buf = append(buf, []byte(c)...)
		buf = append(buf, make([]byte, 8)...)
	}
	return buf
}

func TestDetect_Signatures(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		ext  string
		mime string
	}{
		{"jpg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpg", "image/jpeg"},
		{"gif", []byte("GIF89a"), "gif", "image/gif"},
		{"webp", append([]byte("RIFF\x24\x00\x00\x00"), []byte("WEBPVP8 ")...), "webp", "image/webp"},
		{"flif", []byte("FLIF\x00"), "flif", "image/flif"},
		{"cr2", []byte{0x49, 0x49, 0x2A, 0x00, 0x10, 0x00, 0x00, 0x00, 0x43, 0x52, 0x02, 0x00}, "cr2", "image/x-canon-cr2"},
		{"orf", []byte{0x49, 0x49, 0x52, 0x4F, 0x08, 0x00, 0x00, 0x00, 0x18}, "orf", "image/x-olympus-orf"},
		{"rw2", []byte{0x49, 0x49, 0x55, 0x00, 0x18, 0x00, 0x00, 0x00, 0x88, 0xE7, 0x74, 0xD8}, "rw2", "image/x-panasonic-rw2"},
		{"raf", []byte("FUJIFILMCCD-RAW 0201"), "raf", "image/x-fujifilm-raf"},
		{"dng", []byte{0x49, 0x49, 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00, 0x2D, 0x00, 0xFE, 0x00}, "dng", "image/x-adobe-dng"},
		{"arw", []byte{0x49, 0x49, 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00, 0x14, 0x00}, "arw", "image/x-sony-arw"},
		{"nef", []byte{0x4D, 0x4D, 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08, 0x1C, 0x00, 0xFE, 0x00}, "nef", "image/x-nikon-nef"},
		{"nef alt", []byte{0x4D, 0x4D, 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08, 0x1F, 0x00, 0x0B, 0x00}, "nef", "image/x-nikon-nef"},
		{"tif little endian", []byte{0x49, 0x49, 0x2A, 0x00, 0x20, 0x00, 0x00, 0x00}, "tif", "image/tiff"},
		{"tif big endian", []byte{0x4D, 0x4D, 0x00, 0x2A, 0x00, 0x00, 0x00, 0x20}, "tif", "image/tiff"},
		{"bmp", []byte("BM\x36\x00"), "bmp", "image/bmp"},
		{"jxr", []byte{0x49, 0x49, 0xBC, 0x01}, "jxr", "image/vnd.ms-photo"},
		{"psd", []byte("8BPS\x00\x01"), "psd", "image/vnd.adobe.photoshop"},
		{"avif", isoBMFF("avif"), "avif", "image/avif"},
		{"heic", isoBMFF("heic"), "heic", "image/heic"},
		{"heix", isoBMFF("heix"), "heic", "image/heic"},
		{"hevc", isoBMFF("hevc"), "heic", "image/heic-sequence"},
		{"hevx", isoBMFF("hevx"), "heic", "image/heic-sequence"},
		{"mif1", isoBMFF("mif1"), "heic", "image/heif"},
		{"msf1", isoBMFF("msf1"), "heic", "image/heif-sequence"},
		{"ico", []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00}, "ico", "image/x-icon"},
		{"cur", []byte{0x00, 0x00, 0x02, 0x00, 0x01, 0x00}, "cur", "image/x-icon"},
		{"bpg", []byte{0x42, 0x50, 0x47, 0xFB}, "bpg", "image/bpg"},
		{"jp2", jp2Container("jp2 "), "jp2", "image/jp2"},
		{"jpx", jp2Container("jpx "), "jpx", "image/jpx"},
		{"jpm", jp2Container("jpm "), "jpm", "image/jpm"},
		{"mj2", jp2Container("mjp2"), "mj2", "image/mj2"},
		{"jxl codestream", []byte{0xFF, 0x0A, 0x00}, "jxl", "image/jxl"},
		{"jxl container", []byte{0x00, 0x00, 0x00, 0x0C, 0x4A, 0x58, 0x4C, 0x20, 0x0D, 0x0A, 0x87, 0x0A}, "jxl", "image/jxl"},
		{"ktx", []byte{0xAB, 0x4B, 0x54, 0x58, 0x20, 0x31, 0x31, 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}, "ktx", "image/ktx"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, ok := Detect(tc.buf)
			if !ok {
				t.Fatalf("expected a match for %s", tc.name)
			}
			if res.Extension != tc.ext || res.MIME != tc.mime {
				t.Fatalf("got (%s, %s), want (%s, %s)", res.Extension, res.MIME, tc.ext, tc.mime)
			}
		})
	}
}

func TestDetect_ShortBuffers(t *testing.T) {
	for _, buf := range [][]byte{nil, {}, {0xFF}} {
		if _, ok := Detect(buf); ok {
			t.Fatalf("expected no match for %d-byte buffer", len(buf))
		}
	}
}

func TestDetect_Unknown(t *testing.T) {
	if res, ok := Detect([]byte("definitely not an image payload")); ok {
		t.Fatalf("unexpected match: %+v", res)
	}
}

func TestDetect_PlainPNG(t *testing.T) {
	res, ok := Detect(pngChunks("IHDR", "IDAT", "IEND"))
	if !ok || res.Extension != "png" || res.MIME != "image/png" {
		t.Fatalf("got (%+v, %v), want png", res, ok)
	}
}

func TestDetect_APNG(t *testing.T) {
	res, ok := Detect(pngChunks("IHDR", "acTL", "IDAT", "IEND"))
	if !ok || res.Extension != "apng" || res.MIME != "image/apng" {
		t.Fatalf("got (%+v, %v), want apng", res, ok)
	}
}

func TestDetect_ACTLAfterIDATIsPlainPNG(t *testing.T) {
	res, ok := Detect(pngChunks("IHDR", "IDAT", "acTL"))
	if !ok || res.Extension != "png" {
		t.Fatalf("got (%+v, %v), want png", res, ok)
	}
}

func TestDetect_PNGWithoutIDAT(t *testing.T) {
	res, ok := Detect(pngChunks("IHDR", "acTL"))
	if !ok || res.Extension != "png" {
		t.Fatalf("got (%+v, %v), want png fallback", res, ok)
	}
}

func TestDetect_TruncatedPNGSignatureOnly(t *testing.T) {
	res, ok := Detect([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	if !ok || res.Extension != "png" {
		t.Fatalf("got (%+v, %v), want png", res, ok)
	}
}

func TestDetect_UnknownISOBrand(t *testing.T) {
	if res, ok := Detect(isoBMFF("mp42")); ok {
		t.Fatalf("unexpected match for mp42 brand: %+v", res)
	}
}

func TestDetect_ISOBrandOutsideASCIIRange(t *testing.T) {
	buf := isoBMFF("avif")
	buf[8] = 0x00
	if res, ok := Detect(buf); ok {
		t.Fatalf("unexpected match for non-ASCII brand byte: %+v", res)
	}
}

func TestDetect_UnknownJP2Brand(t *testing.T) {
	if res, ok := Detect(jp2Container("abcd")); ok {
		t.Fatalf("unexpected match for unknown jp2 brand: %+v", res)
	}
}

func TestDetect_RawsWinOverGenericTIFF(t *testing.T) {
	cr2 := []byte{0x49, 0x49, 0x2A, 0x00, 0x10, 0x00, 0x00, 0x00, 0x43, 0x52}
	res, ok := Detect(cr2)
	if !ok || res.Extension != "cr2" {
		t.Fatalf("got (%+v, %v), want cr2 before tif", res, ok)
	}
}

func TestDetect_DoesNotMutateInput(t *testing.T) {
	buf := pngChunks("IHDR", "acTL", "IDAT")
	clone := bytes.Clone(buf)
	Detect(buf)
	if !bytes.Equal(buf, clone) {
		t.Fatal("Detect mutated its input")
	}
}
