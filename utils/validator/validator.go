package validator

import (
	"bytes"
	"image"
	"net/http"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// allowedImageMimeTypes Allowed image types
var allowedImageMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
	"image/avif": true,
}

// IsImageBytes 检测字节内容是否为允许的图片类型，返回检测到的 MIME 类型
func IsImageBytes(data []byte) (bool, string) {
	header := data
	if len(header) > 512 {
		header = header[:512]
	}

	mimeType := http.DetectContentType(header)
	if mimeType == "application/octet-stream" {
		// net/http 没有 TIFF/AVIF 的签名，补充识别
		if sniffed := sniffExtraImageType(header); sniffed != "" {
			mimeType = sniffed
		}
	}

	if allowedImageMimeTypes[mimeType] {
		return true, mimeType
	}
	return false, mimeType
}

// sniffExtraImageType 识别 http.DetectContentType 不覆盖的图片签名
func sniffExtraImageType(header []byte) string {
	// TIFF: "II*\0" (小端) 或 "MM\0*" (大端)
	if bytes.HasPrefix(header, []byte("II*\x00")) || bytes.HasPrefix(header, []byte("MM\x00*")) {
		return "image/tiff"
	}

	// AVIF: ISO BMFF，ftyp box 的 major brand 为 "avif"
	if len(header) >= 12 && bytes.Equal(header[4:8], []byte("ftyp")) && bytes.Equal(header[8:12], []byte("avif")) {
		return "image/avif"
	}

	return ""
}

// GetImageDimensions 读取图片尺寸，失败时返回 0,0
func GetImageDimensions(data []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
