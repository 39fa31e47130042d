package transform

import (
	"fmt"

	"github.com/davidbyttow/govips/v2/vips"
)

// Engine 变换流水线引擎
// 纯函数式组件：除读取水印源文件外没有任何 I/O，不触碰存储。
type Engine struct{}

// NewEngine 创建流水线引擎
func NewEngine() *Engine {
	return &Engine{}
}

// pipelineState 在各阶段之间传递的流水线状态
type pipelineState struct {
	img     *vips.ImageRef
	format  string // 最终编码格式
	quality int    // 0 表示使用各编码器默认值
}

// stage 一个有序、可选的流水线阶段
type stage struct {
	name   string
	active func(d *DirectiveSet) bool
	apply  func(s *pipelineState, d *DirectiveSet) error
}

// stages 阶段以固定顺序执行，顺序本身是设计契约：
// 几何阶段必须先于像素滤镜和合成，这样裁剪坐标和水印位置
// 作用在已缩放/旋转的画布上；格式选择必须先于压缩，因为压缩依赖格式。
var stages = []stage{
	{
		name:   "resize",
		active: func(d *DirectiveSet) bool { return d.Resize != nil },
		apply:  applyResize,
	},
	{
		name:   "crop",
		active: func(d *DirectiveSet) bool { return d.Crop != nil },
		apply:  applyCrop,
	},
	{
		name:   "rotate",
		active: func(d *DirectiveSet) bool { return d.Rotate != nil },
		apply:  applyRotate,
	},
	{
		name:   "format",
		active: func(d *DirectiveSet) bool { return d.Format != "" },
		apply: func(s *pipelineState, d *DirectiveSet) error {
			s.format = d.Format
			return nil
		},
	},
	{
		name:   "greyscale",
		active: func(d *DirectiveSet) bool { return d.Filter != nil && d.Filter.Greyscale },
		apply: func(s *pipelineState, d *DirectiveSet) error {
			return s.img.ToColorSpace(vips.InterpretationBW)
		},
	},
	{
		name:   "flip",
		active: func(d *DirectiveSet) bool { return d.Flip },
		apply: func(s *pipelineState, d *DirectiveSet) error {
			return s.img.Flip(vips.DirectionVertical)
		},
	},
	{
		name:   "mirror",
		active: func(d *DirectiveSet) bool { return d.Mirror },
		apply: func(s *pipelineState, d *DirectiveSet) error {
			return s.img.Flip(vips.DirectionHorizontal)
		},
	},
	{
		name:   "compress",
		active: func(d *DirectiveSet) bool { return d.Compress != nil },
		apply: func(s *pipelineState, d *DirectiveSet) error {
			// 压缩与格式绑定，质量在最终编码时生效
			s.quality = *d.Compress
			return nil
		},
	},
	{
		name:   "watermark",
		active: func(d *DirectiveSet) bool { return d.Watermark != nil },
		apply:  applyWatermark,
	},
}

// StageOrder 返回固定的阶段顺序（含最终编码），用于测试顺序契约
func StageOrder() []string {
	order := make([]string, 0, len(stages)+1)
	for _, st := range stages {
		order = append(order, st.name)
	}
	return append(order, "encode")
}

// Apply 对源字节应用一组变换指令，返回新的字节缓冲和输出格式
// 任何阶段失败都中止整条流水线并返回带阶段名的 ProcessingError。
func (e *Engine) Apply(src []byte, d DirectiveSet) ([]byte, string, error) {
	if err := d.Validate(); err != nil {
		return nil, "", err
	}

	img, err := vips.NewImageFromBuffer(src)
	if err != nil {
		return nil, "", processingErr("decode", fmt.Errorf("source is not a decodable image: %w", err))
	}
	defer img.Close()

	state := &pipelineState{
		img:    img,
		format: detectFormat(img.Format()),
	}

	for _, st := range stages {
		if !st.active(&d) {
			continue
		}
		if err := st.apply(state, &d); err != nil {
			if _, ok := err.(*ProcessingError); ok {
				return nil, "", err
			}
			return nil, "", processingErr(st.name, err)
		}
	}

	out, err := encode(state)
	if err != nil {
		return nil, "", err
	}
	return out, state.format, nil
}

func applyResize(s *pipelineState, d *DirectiveSet) error {
	width, height := s.img.Width(), s.img.Height()
	if width == 0 || height == 0 {
		return fmt.Errorf("source has zero dimensions")
	}

	hscale := float64(d.Resize.Width) / float64(width)
	vscale := float64(d.Resize.Height) / float64(height)
	return s.img.ResizeWithVScale(hscale, vscale, vips.KernelLanczos3)
}

func applyCrop(s *pipelineState, d *DirectiveSet) error {
	c := d.Crop
	if c.X+c.Width > s.img.Width() || c.Y+c.Height > s.img.Height() {
		return fmt.Errorf("crop region %dx%d at (%d,%d) exceeds canvas %dx%d",
			c.Width, c.Height, c.X, c.Y, s.img.Width(), s.img.Height())
	}
	return s.img.ExtractArea(c.X, c.Y, c.Width, c.Height)
}

func applyRotate(s *pipelineState, d *DirectiveSet) error {
	angle := ((*d.Rotate % 360) + 360) % 360
	switch angle {
	case 0:
		return nil
	case 90:
		return s.img.Rotate(vips.Angle90)
	case 180:
		return s.img.Rotate(vips.Angle180)
	case 270:
		return s.img.Rotate(vips.Angle270)
	default:
		return s.img.Similarity(1.0, float64(angle), &vips.ColorRGBA{}, 0, 0, 0, 0)
	}
}

func applyWatermark(s *pipelineState, d *DirectiveSet) error {
	w := d.Watermark

	overlay, err := vips.NewImageFromFile(w.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to load watermark source '%s': %w", w.SourcePath, err)
	}
	defer overlay.Close()

	hscale := float64(w.Width) / float64(overlay.Width())
	vscale := float64(w.Height) / float64(overlay.Height())
	if err := overlay.ResizeWithVScale(hscale, vscale, vips.KernelLanczos3); err != nil {
		return fmt.Errorf("failed to resize watermark: %w", err)
	}

	placement, err := w.Placement()
	if err != nil {
		return err
	}

	// 位置相对此时的画布计算，也就是几何阶段之后的画布
	left, top := resolveOffsets(placement, s.img.Width(), s.img.Height(), overlay.Width(), overlay.Height())
	return s.img.Composite(overlay, vips.BlendModeOver, left, top)
}

// resolveOffsets 将放置方式解析为画布内的像素偏移
func resolveOffsets(p Placement, baseW, baseH, overlayW, overlayH int) (left, top int) {
	if !p.Named() {
		return p.Left, p.Top
	}

	switch p.Anchor {
	case AnchorTopLeft:
		return 0, 0
	case AnchorTopRight:
		return baseW - overlayW, 0
	case AnchorBottomLeft:
		return 0, baseH - overlayH
	case AnchorCenter:
		return (baseW - overlayW) / 2, (baseH - overlayH) / 2
	default: // AnchorBottomRight
		return baseW - overlayW, baseH - overlayH
	}
}

// encode 最终编码阶段：总是把内存中的图像重新序列化为输出格式
func encode(s *pipelineState) ([]byte, error) {
	var out []byte
	var err error

	switch s.format {
	case "jpeg":
		params := vips.NewJpegExportParams()
		if s.quality > 0 {
			params.Quality = s.quality
		}
		out, _, err = s.img.ExportJpeg(params)
	case "png":
		// PNG 无损，质量指令不适用
		out, _, err = s.img.ExportPng(vips.NewPngExportParams())
	case "webp":
		params := vips.NewWebpExportParams()
		if s.quality > 0 {
			params.Quality = s.quality
		}
		out, _, err = s.img.ExportWebp(params)
	case "tiff":
		params := vips.NewTiffExportParams()
		if s.quality > 0 {
			params.Quality = s.quality
		}
		out, _, err = s.img.ExportTiff(params)
	case "gif":
		params := vips.NewGifExportParams()
		if s.quality > 0 {
			params.Quality = s.quality
		}
		out, _, err = s.img.ExportGif(params)
	case "avif":
		params := vips.NewAvifExportParams()
		if s.quality > 0 {
			params.Quality = s.quality
		}
		out, _, err = s.img.ExportAvif(params)
	case "svg":
		// libvips 可以解码 SVG 但无法编码
		return nil, processingErr("encode", fmt.Errorf("svg output encoding is not supported"))
	default:
		return nil, processingErr("encode", fmt.Errorf("no encoder for format '%s'", s.format))
	}

	if err != nil {
		return nil, processingErr("encode", err)
	}
	return out, nil
}

// detectFormat 将源图像类型映射为输出格式名
// 源格式无对应编码器时回退到 png，保证最终编码总能进行。
func detectFormat(t vips.ImageType) string {
	switch t {
	case vips.ImageTypeJPEG:
		return "jpeg"
	case vips.ImageTypePNG:
		return "png"
	case vips.ImageTypeWEBP:
		return "webp"
	case vips.ImageTypeTIFF:
		return "tiff"
	case vips.ImageTypeGIF:
		return "gif"
	case vips.ImageTypeAVIF:
		return "avif"
	default:
		return "png"
	}
}
