package transform

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPNG 生成纯色 PNG 测试图
func newPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 120, G: 60, B: 200, A: 255})

	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, imaging.PNG)
	require.NoError(t, err)
	return buf.Bytes()
}

// decodeDims 读取输出字节的尺寸
func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := vips.NewImageFromBuffer(data)
	require.NoError(t, err)
	defer img.Close()
	return img.Width(), img.Height()
}

func TestApply_InvalidDirectivesRejectedBeforeDecode(t *testing.T) {
	engine := NewEngine()

	// 源字节是垃圾也无所谓，校验先于解码
	_, _, err := engine.Apply([]byte("not an image"), DirectiveSet{Format: "bmp"})
	assert.Error(t, err)
	assert.IsType(t, &InvalidDirectiveError{}, err)
}

func TestApply_UndecodableSource(t *testing.T) {
	engine := NewEngine()

	_, _, err := engine.Apply([]byte("not an image"), DirectiveSet{})
	assert.Error(t, err)
	procErr, ok := err.(*ProcessingError)
	require.True(t, ok)
	assert.Equal(t, "decode", procErr.Stage)
}

func TestApply_EmptyDirectivesReencodes(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 64, 48)

	out, format, err := engine.Apply(src, DirectiveSet{})
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.NotEmpty(t, out)

	w, h := decodeDims(t, out)
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
}

func TestApply_Resize(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 400, 300)

	out, _, err := engine.Apply(src, DirectiveSet{
		Resize: &ResizeDirective{Width: 200, Height: 100},
	})
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 200, w)
	assert.Equal(t, 100, h)
}

func TestApply_Crop(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 100, 100)

	out, _, err := engine.Apply(src, DirectiveSet{
		Crop: &CropDirective{Width: 30, Height: 20, X: 10, Y: 5},
	})
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 30, w)
	assert.Equal(t, 20, h)
}

func TestApply_CropOutOfBounds(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 50, 50)

	_, _, err := engine.Apply(src, DirectiveSet{
		Crop: &CropDirective{Width: 40, Height: 40, X: 20, Y: 20},
	})
	require.Error(t, err)
	procErr, ok := err.(*ProcessingError)
	require.True(t, ok)
	assert.Equal(t, "crop", procErr.Stage)
}

func TestApply_RotateSwapsDimensions(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 400, 300)

	out, format, err := engine.Apply(src, DirectiveSet{
		Rotate: intPtr(90),
		Format: "png",
	})
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	w, h := decodeDims(t, out)
	assert.Equal(t, 300, w)
	assert.Equal(t, 400, h)
}

func TestApply_RotateNormalizesNegativeAngle(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 400, 300)

	// -270 与 90 等价
	out, _, err := engine.Apply(src, DirectiveSet{Rotate: intPtr(-270)})
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 300, w)
	assert.Equal(t, 400, h)
}

func TestApply_FormatConversion(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 32, 32)

	out, format, err := engine.Apply(src, DirectiveSet{Format: "jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	img, err := vips.NewImageFromBuffer(out)
	require.NoError(t, err)
	defer img.Close()
	assert.Equal(t, vips.ImageTypeJPEG, img.Format())
}

func TestApply_SvgOutputFailsAtEncode(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 16, 16)

	// svg 通过允许列表但在编码阶段失败
	_, _, err := engine.Apply(src, DirectiveSet{Format: "svg"})
	require.Error(t, err)
	procErr, ok := err.(*ProcessingError)
	require.True(t, ok)
	assert.Equal(t, "encode", procErr.Stage)
}

func TestApply_GreyscaleFlipMirrorPreserveDimensions(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 60, 40)

	out, _, err := engine.Apply(src, DirectiveSet{
		Filter: &FilterDirective{Greyscale: true},
		Flip:   true,
		Mirror: true,
	})
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 60, w)
	assert.Equal(t, 40, h)
}

func TestApply_CompressProducesSmallerJpeg(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 200, 200)

	high, _, err := engine.Apply(src, DirectiveSet{Format: "jpeg", Compress: intPtr(95)})
	require.NoError(t, err)

	low, _, err := engine.Apply(src, DirectiveSet{Format: "jpeg", Compress: intPtr(5)})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(low), len(high))
}

func TestApply_Watermark(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 100, 100)

	markPath := filepath.Join(t.TempDir(), "mark.png")
	require.NoError(t, os.WriteFile(markPath, newPNG(t, 20, 20), 0644))

	out, _, err := engine.Apply(src, DirectiveSet{
		Watermark: &WatermarkDirective{
			SourcePath: markPath,
			Width:      10,
			Height:     10,
			Position:   "bottom-right",
		},
	})
	require.NoError(t, err)

	w, h := decodeDims(t, out)
	assert.Equal(t, 100, w)
	assert.Equal(t, 100, h)
}

func TestApply_WatermarkMissingSource(t *testing.T) {
	engine := NewEngine()
	src := newPNG(t, 100, 100)

	_, _, err := engine.Apply(src, DirectiveSet{
		Watermark: &WatermarkDirective{
			SourcePath: filepath.Join(t.TempDir(), "missing.png"),
			Width:      10,
			Height:     10,
		},
	})
	require.Error(t, err)
	procErr, ok := err.(*ProcessingError)
	require.True(t, ok)
	assert.Equal(t, "watermark", procErr.Stage)
}

func TestResolveOffsets(t *testing.T) {
	cases := []struct {
		anchor   Anchor
		wantLeft int
		wantTop  int
	}{
		{AnchorTopLeft, 0, 0},
		{AnchorTopRight, 80, 0},
		{AnchorBottomLeft, 0, 90},
		{AnchorBottomRight, 80, 90},
		{AnchorCenter, 40, 45},
	}

	for _, tc := range cases {
		left, top := resolveOffsets(Placement{Anchor: tc.anchor}, 100, 100, 20, 10)
		assert.Equal(t, tc.wantLeft, left, "anchor %s", tc.anchor)
		assert.Equal(t, tc.wantTop, top, "anchor %s", tc.anchor)
	}

	// 偏移模式直接透传
	left, top := resolveOffsets(Placement{Top: 3, Left: 7}, 100, 100, 20, 10)
	assert.Equal(t, 7, left)
	assert.Equal(t, 3, top)
}
