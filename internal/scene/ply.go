package scene

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// WritePLY encodes a mesh as an ASCII PLY file with per-vertex material colour.
func WritePLY(w io.Writer, m Mesh) error {
	if len(m.Vertices) == 0 {
		return ErrEmptyMesh
	}

	bw := bufio.NewWriter(w)
	c := m.Material.RGBA()

	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintf(bw, "comment object %s\n", m.Name)
	if m.Material.Name != "" {
		fmt.Fprintf(bw, "comment material %s\n", m.Material.Name)
	}
	fmt.Fprintf(bw, "element vertex %d\n", len(m.Vertices))
	fmt.Fprintln(bw, "property double x")
	fmt.Fprintln(bw, "property double y")
	fmt.Fprintln(bw, "property double z")
	fmt.Fprintln(bw, "property uchar red")
	fmt.Fprintln(bw, "property uchar green")
	fmt.Fprintln(bw, "property uchar blue")
	fmt.Fprintln(bw, "property uchar alpha")
	fmt.Fprintln(bw, "end_header")

	buf := make([]byte, 0, 96)
	for _, v := range m.Vertices {
		buf = buf[:0]
		buf = strconv.AppendFloat(buf, v.X, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, v.Y, 'g', -1, 64)
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, v.Z, 'g', -1, 64)
		buf = fmt.Appendf(buf, " %d %d %d %d\n", c.R, c.G, c.B, c.A)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	return bw.Flush()
}
