package publisher

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seqsense/pcgol/pc"

	"github.com/okian/robocloud/internal/domain/cloud"
)

// PCDWriter writes each frame as a binary PCD v0.7 file with fields
// x y z intensity. The file is replaced atomically.
type PCDWriter struct {
	path string
	pcd  pc.PointCloud
}

// NewPCDWriter writes to path.
func NewPCDWriter(path string) *PCDWriter {
	return &PCDWriter{path: path}
}

// Publish writes f to a temp file next to path and renames it into place.
func (w *PCDWriter) Publish(_ context.Context, f *cloud.Frame) error {
	if _, err := cloud.PackXYZI(f, &w.pcd); err != nil {
		return fmt.Errorf("pcd: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".robocloud-*.pcd")
	if err != nil {
		return fmt.Errorf("pcd: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bw := bufio.NewWriter(tmp)
	if err := pc.Marshal(&w.pcd, bw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("pcd: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("pcd: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pcd: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("pcd: %w", err)
	}
	return nil
}
