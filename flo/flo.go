// Package flo reads and writes optical flow fields in the Middlebury .flo
// format: a float32 tag, the int32 width and height, then width*height
// (u,v) float32 pairs row by row, all little-endian.
package flo

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/Zelak312/flowinterp/interp"
)

// Tag is the float32 every .flo file starts with ("PIEH" in ASCII).
const Tag float32 = 202021.25

// MaxDimension bounds width and height read from a header.
const MaxDimension = 1 << 15

// Extension is the file extension Load and Save require.
const Extension = ".flo"

// ErrInvalidFlowFile is returned for anything that is not a well formed
// .flo file.
var ErrInvalidFlowFile = errors.New("invalid flow file")

// Read decodes a flow field. The tag is checked before the header
// dimensions are trusted, and nothing is returned unless every vector was
// read.
func Read(r io.Reader) (*interp.FlowField, error) {
	var header struct {
		Tag    float32
		Width  int32
		Height int32
	}

	if err := binary.Read(r, binary.LittleEndian, &header.Tag); err != nil {
		return nil, fmt.Errorf("%w: reading tag: %v", ErrInvalidFlowFile, err)
	}

	if header.Tag != Tag {
		return nil, fmt.Errorf("%w: tag is %v, want %v", ErrInvalidFlowFile, header.Tag, Tag)
	}

	if err := binary.Read(r, binary.LittleEndian, &header.Width); err != nil {
		return nil, fmt.Errorf("%w: reading width: %v", ErrInvalidFlowFile, err)
	}

	if err := binary.Read(r, binary.LittleEndian, &header.Height); err != nil {
		return nil, fmt.Errorf("%w: reading height: %v", ErrInvalidFlowFile, err)
	}

	if header.Width <= 0 || header.Height <= 0 || header.Width > MaxDimension || header.Height > MaxDimension {
		return nil, fmt.Errorf("%w: bad dimensions %dx%d", ErrInvalidFlowFile, header.Width, header.Height)
	}

	width, height := int(header.Width), int(header.Height)
	data := make([]byte, width*height*2*4)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("%w: reading %dx%d vectors: %v", ErrInvalidFlowFile, width, height, err)
	}

	flow := interp.NewFlowField(width, height)
	for i := range flow.Vectors {
		u := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8:]))
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[i*8+4:]))
		flow.Vectors[i] = interp.Vector{U: float64(u), V: float64(v)}
	}

	return flow, nil
}

// Write encodes a flow field. Vectors are narrowed to float32.
func Write(w io.Writer, flow *interp.FlowField) error {
	if flow.Width <= 0 || flow.Height <= 0 || len(flow.Vectors) != flow.Width*flow.Height {
		return fmt.Errorf("cannot write %dx%d flow holding %d vectors", flow.Width, flow.Height, len(flow.Vectors))
	}

	buf := make([]byte, 12+len(flow.Vectors)*8)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(Tag))
	binary.LittleEndian.PutUint32(buf[4:], uint32(flow.Width))
	binary.LittleEndian.PutUint32(buf[8:], uint32(flow.Height))
	for i, v := range flow.Vectors {
		binary.LittleEndian.PutUint32(buf[12+i*8:], math.Float32bits(float32(v.U)))
		binary.LittleEndian.PutUint32(buf[16+i*8:], math.Float32bits(float32(v.V)))
	}

	_, err := w.Write(buf)
	return err
}

func checkExtension(path string) error {
	if !strings.EqualFold(filepath.Ext(path), Extension) {
		return fmt.Errorf("%w: %s does not end with %s", ErrInvalidFlowFile, path, Extension)
	}

	return nil
}

// Load reads the .flo file at path.
func Load(path string) (*interp.FlowField, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(bufio.NewReader(f))
}

// Save writes flow to a .flo file at path, replacing it if it exists.
func Save(path string, flow *interp.FlowField) error {
	if err := checkExtension(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, flow); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
