package scene

import (
	"bufio"
	"io"
	"strconv"
)

// WriteOBJ writes obj as a Wavefront OBJ polyline mesh: one "v" record per
// vertex and one "l" record per edge (1-based indices).
func WriteOBJ(w io.Writer, obj *Object) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("# hairstrand\no ")
	bw.WriteString(obj.Name)
	bw.WriteByte('\n')

	buf := make([]byte, 0, 64)
	for _, p := range obj.Geometry.Vertices {
		buf = append(buf[:0], 'v')
		for _, c := range [3]float32{p.X, p.Y, p.Z} {
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, float64(c), 'g', -1, 32)
		}
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	for _, e := range obj.Geometry.Edges {
		buf = append(buf[:0], 'l', ' ')
		buf = strconv.AppendInt(buf, int64(e[0]+1), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(e[1]+1), 10)
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	return bw.Flush()
}
