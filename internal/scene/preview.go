package scene

import (
	"image"
	"image/draw"
	"io"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

// previewSupersample is the render scale before downsampling to the target size.
const previewSupersample = 2

// RenderPreview draws a top-down (X/Y plane, north up) view of the mesh.
// Points are rendered at a higher resolution and scaled down for smoother dots.
func RenderPreview(m Mesh, size int) image.Image {
	if size <= 0 {
		size = 512
	}

	big := size * previewSupersample
	canvas := image.NewRGBA(image.Rect(0, 0, big, big))
	c := m.Material.RGBA()

	b := m.Bounds()
	span := max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)
	scale := 0.0
	if span > 0 {
		scale = float64(big-1) / span
	}

	for _, v := range m.Vertices {
		px := int((v.X - b.Min.X) * scale)
		py := big - 1 - int((v.Y-b.Min.Y)*scale)
		if span == 0 {
			px, py = big/2, big/2
		}
		// 2x2 dot so it survives downsampling
		for dx := 0; dx < previewSupersample; dx++ {
			for dy := 0; dy < previewSupersample; dy++ {
				canvas.SetRGBA(min(px+dx, big-1), max(py-dy, 0), c)
			}
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), canvas, canvas.Bounds(), draw.Over, nil)

	return dst
}

// WritePreview renders the mesh and encodes it as lossless WebP.
func WritePreview(w io.Writer, m Mesh, size int) error {
	if len(m.Vertices) == 0 {
		return ErrEmptyMesh
	}
	return webp.Encode(w, RenderPreview(m, size), &webp.Options{Lossless: true})
}
