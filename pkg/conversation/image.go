package conversation

import (
	"Prontu/pkg/core"
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const jpegQuality = 85

// downscaleImage shrinks an outbound image so its longest edge does not
// exceed the configured maximum, re-encoding as JPEG. Images that fail
// to decode are sent untouched; the gateway may still accept them.
func (p *Pipeline) downscaleImage(att core.Attachment) core.Attachment {
	if p.maxImageEdge <= 0 {
		return att
	}
	img, _, err := image.Decode(bytes.NewReader(att.Data))
	if err != nil {
		p.logf("image %q not decodable, sending as-is: %v", att.FileName, err)
		return att
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= p.maxImageEdge {
		return att
	}

	scale := float64(p.maxImageEdge) / float64(longest)
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		p.logf("image %q re-encode failed, sending as-is: %v", att.FileName, err)
		return att
	}

	p.logf("image %q downscaled %dx%d -> %dx%d", att.FileName, w, h, nw, nh)
	att.Data = buf.Bytes()
	att.MimeType = "image/jpeg"
	att.FileName = jpegFileName(att.FileName)
	return att
}

func jpegFileName(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return name + ".jpg"
	}
	return strings.TrimSuffix(name, ext) + ".jpg"
}
