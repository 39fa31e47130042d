package transform

import "fmt"

// ValidFormats 输出格式允许列表
// 列表外的格式一律拒绝，绝不静默回退。
var ValidFormats = map[string]bool{
	"jpeg": true,
	"png":  true,
	"webp": true,
	"tiff": true,
	"gif":  true,
	"svg":  true,
	"avif": true,
}

// 压缩质量的有效区间，区间外拒绝而不是截断
const (
	MinQuality = 1
	MaxQuality = 100
)

// Anchor 水印的命名锚点位置
type Anchor string

const (
	AnchorNone        Anchor = ""
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
	AnchorCenter      Anchor = "center"
)

// ParseAnchor 解析命名锚点，未知名称是校验错误而不是静默回退
func ParseAnchor(name string) (Anchor, error) {
	switch Anchor(name) {
	case AnchorTopLeft, AnchorTopRight, AnchorBottomLeft, AnchorBottomRight, AnchorCenter:
		return Anchor(name), nil
	default:
		return AnchorNone, fmt.Errorf("unknown watermark position '%s'", name)
	}
}

// ResizeDirective 缩放指令
type ResizeDirective struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CropDirective 裁剪指令，坐标相对于缩放后的画布
type CropDirective struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// FilterDirective 像素滤镜指令
type FilterDirective struct {
	Greyscale bool `json:"greyscale"`
}

// WatermarkDirective 水印指令
// 命名锚点和显式偏移二选一：Position 非空时为锚点模式，否则为偏移模式。
type WatermarkDirective struct {
	SourcePath string `json:"sourcePath"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Position   string `json:"position,omitempty"`
	Top        int    `json:"top,omitempty"`
	Left       int    `json:"left,omitempty"`
}

// Placement 已解析的水印放置方式（带标签的变体）
type Placement struct {
	Anchor Anchor
	Top    int
	Left   int
}

// Named 是否为命名锚点模式
func (p Placement) Named() bool {
	return p.Anchor != AnchorNone
}

// Placement 解析放置方式
func (w *WatermarkDirective) Placement() (Placement, error) {
	if w.Position != "" {
		anchor, err := ParseAnchor(w.Position)
		if err != nil {
			return Placement{}, err
		}
		return Placement{Anchor: anchor}, nil
	}
	return Placement{Top: w.Top, Left: w.Left}, nil
}

// DirectiveSet 一次流水线调用的声明式变换描述
// 纯值对象，所有字段可选，缺失即该阶段跳过；不携带属主或会话状态。
type DirectiveSet struct {
	Resize    *ResizeDirective    `json:"resize,omitempty"`
	Crop      *CropDirective      `json:"crop,omitempty"`
	Rotate    *int                `json:"rotate,omitempty"`
	Format    string              `json:"format,omitempty"`
	Filter    *FilterDirective    `json:"filter,omitempty"`
	Flip      bool                `json:"flip,omitempty"`
	Mirror    bool                `json:"mirror,omitempty"`
	Compress  *int                `json:"compress,omitempty"`
	Watermark *WatermarkDirective `json:"watermark,omitempty"`
}

// Validate 在解码任何像素之前校验整组指令
func (d *DirectiveSet) Validate() error {
	if d.Resize != nil {
		if d.Resize.Width <= 0 || d.Resize.Height <= 0 {
			return invalidDirectivef("resize dimensions must be positive, got %dx%d", d.Resize.Width, d.Resize.Height)
		}
	}

	if d.Crop != nil {
		if d.Crop.Width <= 0 || d.Crop.Height <= 0 {
			return invalidDirectivef("crop dimensions must be positive, got %dx%d", d.Crop.Width, d.Crop.Height)
		}
		if d.Crop.X < 0 || d.Crop.Y < 0 {
			return invalidDirectivef("crop offsets must be non-negative, got (%d,%d)", d.Crop.X, d.Crop.Y)
		}
	}

	if d.Format != "" && !ValidFormats[d.Format] {
		return invalidDirectivef("unsupported output format '%s'", d.Format)
	}

	if d.Compress != nil {
		if *d.Compress < MinQuality || *d.Compress > MaxQuality {
			return invalidDirectivef("compress quality must be within [%d,%d], got %d", MinQuality, MaxQuality, *d.Compress)
		}
	}

	if d.Watermark != nil {
		w := d.Watermark
		if w.SourcePath == "" {
			return invalidDirectivef("watermark source path is required")
		}
		if w.Width <= 0 || w.Height <= 0 {
			return invalidDirectivef("watermark dimensions must be positive, got %dx%d", w.Width, w.Height)
		}
		if _, err := w.Placement(); err != nil {
			return &InvalidDirectiveError{Reason: err.Error()}
		}
		if w.Position == "" && (w.Top < 0 || w.Left < 0) {
			return invalidDirectivef("watermark offsets must be non-negative, got (%d,%d)", w.Top, w.Left)
		}
	}

	return nil
}
