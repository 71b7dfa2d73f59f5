package cloud

import (
	"fmt"

	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

// PointCloud2 field datatypes.
const (
	Float32 uint8 = 7
)

// PointStep is the size of one x,y,z,intensity record.
const PointStep = 16

// PointField describes one channel of a PointCloud2 record.
type PointField struct {
	Name     string `json:"name"`
	Offset   uint32 `json:"offset"`
	Datatype uint8  `json:"datatype"`
	Count    uint32 `json:"count"`
}

// PointCloud2 is the packed binary point-cloud layout: an unorganized cloud
// of Width points, little-endian float32 x, y, z and intensity.
type PointCloud2 struct {
	FrameID     string       `json:"frame_id"`
	StampNanos  int64        `json:"stamp_ns"`
	Seq         uint64       `json:"seq"`
	Height      uint32       `json:"height"`
	Width       uint32       `json:"width"`
	Fields      []PointField `json:"fields"`
	IsBigEndian bool         `json:"is_bigendian"`
	PointStep   uint32       `json:"point_step"`
	RowStep     uint32       `json:"row_step"`
	Data        []byte       `json:"data"`
	IsDense     bool         `json:"is_dense"`
}

var xyziFields = []PointField{ //nolint:gochecknoglobals // fixed record layout
	{Name: "x", Offset: 0, Datatype: Float32, Count: 1},
	{Name: "y", Offset: 4, Datatype: Float32, Count: 1},
	{Name: "z", Offset: 8, Datatype: Float32, Count: 1},
	{Name: "intensity", Offset: 12, Datatype: Float32, Count: 1},
}

// XYZIHeader is the PCD header of an unorganized n-point x,y,z,intensity
// cloud. Its record layout matches PointCloud2's.
func XYZIHeader(n int) pc.PointCloudHeader {
	return pc.PointCloudHeader{
		Version:   0.7,
		Fields:    []string{"x", "y", "z", "intensity"},
		Size:      []int{4, 4, 4, 4},
		Type:      []string{"F", "F", "F", "F"},
		Count:     []int{1, 1, 1, 1},
		Width:     n,
		Height:    1,
		Viewpoint: []float32{0, 0, 0, 1, 0, 0, 0},
	}
}

// PackXYZI writes f into dst as x,y,z,intensity records, reusing dst.Data
// when it is large enough. A nil dst allocates a new cloud.
func PackXYZI(f *Frame, dst *pc.PointCloud) (*pc.PointCloud, error) {
	if dst == nil {
		dst = &pc.PointCloud{}
	}
	n := f.Len()
	size := n * PointStep
	if cap(dst.Data) < size {
		dst.Data = make([]byte, size)
	}
	dst.PointCloudHeader = XYZIHeader(n)
	dst.Points = n
	dst.Data = dst.Data[:size]
	if n == 0 {
		return dst, nil
	}

	xyz, err := dst.Vec3Iterator()
	if err != nil {
		return nil, fmt.Errorf("pack xyz: %w", err)
	}
	in, err := dst.Float32Iterator("intensity")
	if err != nil {
		return nil, fmt.Errorf("pack intensity: %w", err)
	}
	for i, p := range f.Points {
		xyz.SetVec3(mat.Vec3{p.X, p.Y, p.Z})
		in.SetFloat32(f.Intensity(i))
		xyz.Incr()
		in.Incr()
	}
	return dst, nil
}

// EncodePointCloud2 packs f into dst, reusing dst.Data when it is large
// enough. A nil dst allocates a new message.
func EncodePointCloud2(f *Frame, dst *PointCloud2) (*PointCloud2, error) {
	if dst == nil {
		dst = &PointCloud2{}
	}
	packed, err := PackXYZI(f, &pc.PointCloud{Data: dst.Data})
	if err != nil {
		return nil, err
	}
	n := f.Len()
	dst.Data = packed.Data
	dst.FrameID = f.FrameID
	dst.StampNanos = f.Stamp.UnixNano()
	dst.Seq = f.Seq
	dst.Height = 1
	dst.Width = uint32(n) //nolint:gosec // frame sizes fit in uint32
	dst.Fields = xyziFields
	dst.IsBigEndian = false
	dst.PointStep = PointStep
	dst.RowStep = uint32(len(packed.Data)) //nolint:gosec // frame sizes fit in uint32
	dst.IsDense = true
	return dst, nil
}
