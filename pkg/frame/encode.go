package frame

import (
	"fmt"

	"gocv.io/x/gocv"
)

// PNG encodes the current image.
func (f *Frame) PNG() ([]byte, error) {
	return EncodePNG(f.current)
}

// Save writes the current image; the format follows the file extension.
func (f *Frame) Save(path string) error {
	if ok := gocv.IMWrite(path, f.current); !ok {
		return fmt.Errorf("%w: %s", ErrEncode, path)
	}
	return nil
}

// EncodePNG encodes m as PNG.
func EncodePNG(m gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
