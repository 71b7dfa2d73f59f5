package mesh

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// DecodeOBJ reads the vertex positions of a Wavefront OBJ file. Faces,
// normals and materials are not needed for sampling and are ignored.
func DecodeOBJ(data []byte) ([]mgl32.Vec3, error) {
	var out []mgl32.Vec3
	rd := bufio.NewReader(bytes.NewReader(data))
	line := 1
	for {
		text, err := rd.ReadString('\n')
		fields := strings.Fields(text)
		if len(fields) > 0 && fields[0] == "v" {
			// v <x> <y> <z> [w]
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: less than 3 values in 'v' line", line)
			}
			v, perr := parseXYZ(fields[1:4])
			if perr != nil {
				return nil, fmt.Errorf("obj: line %d: %w", line, perr)
			}
			out = append(out, v)
		}
		if err != nil {
			break
		}
		line++
	}
	return out, nil
}
