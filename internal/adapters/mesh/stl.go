package mesh

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50 // normal + 3 vertices (12 float32) + attribute count
)

// DecodeSTL reads binary or ASCII STL and returns three vertices per facet.
func DecodeSTL(data []byte) ([]mgl32.Vec3, error) {
	if isBinarySTL(data) {
		return decodeBinarySTL(data)
	}
	return decodeASCIISTL(data)
}

// isBinarySTL trusts the triangle count when the size matches it exactly;
// some binary exporters also start the header with "solid".
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	if uint64(len(data)) == stlHeaderSize+4+uint64(n)*stlTriangleSize {
		return true
	}
	return !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

func decodeBinarySTL(data []byte) ([]mgl32.Vec3, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, errors.New("stl: short header")
	}
	n := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	body := data[stlHeaderSize+4:]
	if len(body) < n*stlTriangleSize {
		return nil, fmt.Errorf("stl: %d triangles declared, %d bytes present", n, len(body))
	}
	out := make([]mgl32.Vec3, 0, n*3)
	for i := 0; i < n; i++ {
		tri := body[i*stlTriangleSize:]
		for k := 0; k < 3; k++ {
			off := 12 + k*12 // skip the normal
			out = append(out, mgl32.Vec3{
				math.Float32frombits(binary.LittleEndian.Uint32(tri[off:])),
				math.Float32frombits(binary.LittleEndian.Uint32(tri[off+4:])),
				math.Float32frombits(binary.LittleEndian.Uint32(tri[off+8:])),
			})
		}
	}
	return out, nil
}

func decodeASCIISTL(data []byte) ([]mgl32.Vec3, error) {
	var out []mgl32.Vec3
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "vertex" {
			continue
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("stl: line %d: vertex with %d values", line, len(fields)-1)
		}
		v, err := parseXYZ(fields[1:4])
		if err != nil {
			return nil, fmt.Errorf("stl: line %d: %w", line, err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseXYZ(fields []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	for i, f := range fields {
		val, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return mgl32.Vec3{}, err
		}
		v[i] = float32(val)
	}
	return v, nil
}
