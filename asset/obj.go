package asset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// LoadOBJ reads a Wavefront OBJ file into a model keyed by path.
func LoadOBJ(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tris, err := ParseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewModel(path, tris), nil
}

// ParseOBJ reads vertex and face records. Polygons are fan-triangulated;
// texture, normal and material records are ignored.
func ParseOBJ(r io.Reader) ([]Triangle, error) {
	var (
		verts []mgl32.Vec3
		tris  []Triangle
		line  int
	)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", line)
			}
			var v mgl32.Vec3
			for i := 0; i < 3; i++ {
				f, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				v[i] = float32(f)
			}
			verts = append(verts, v)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", line)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				// v, v/vt, v//vn and v/vt/vn all start with the vertex index
				head, _, _ := strings.Cut(ref, "/")
				n, err := strconv.Atoi(head)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				if n < 0 {
					n = len(verts) + n + 1
				}
				if n < 1 || n > len(verts) {
					return nil, fmt.Errorf("line %d: vertex index %s out of range", line, head)
				}
				idx = append(idx, n-1)
			}
			for i := 1; i+1 < len(idx); i++ {
				tris = append(tris, Triangle{verts[idx[0]], verts[idx[i]], verts[idx[i+1]]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return tris, nil
}
