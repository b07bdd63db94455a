//go:build windows

package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/fennwick/pageturner/internal/geom"
)

const srccopy = 0x00CC0020

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	gdi32                   = windows.NewLazySystemDLL("gdi32.dll")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowRect       = user32.NewProc("GetWindowRect")
	procGetDC               = user32.NewProc("GetDC")
	procReleaseDC           = user32.NewProc("ReleaseDC")
	procSetProcessDPIAware  = user32.NewProc("SetProcessDPIAware")
	procCreateCompatibleDC  = gdi32.NewProc("CreateCompatibleDC")
	procCreateCompatibleBmp = gdi32.NewProc("CreateCompatibleBitmap")
	procSelectObject        = gdi32.NewProc("SelectObject")
	procBitBlt              = gdi32.NewProc("BitBlt")
	procGetDIBits           = gdi32.NewProc("GetDIBits")
	procDeleteObject        = gdi32.NewProc("DeleteObject")
	procDeleteDC            = gdi32.NewProc("DeleteDC")
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

type bitmapInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

type bitmapInfo struct {
	Header bitmapInfoHeader
	Colors [1]uint32
}

type windowsBackend struct{}

// NewBackend returns the GDI-based capture backend.
func NewBackend() Backend {
	_, _, _ = procSetProcessDPIAware.Call()
	return &windowsBackend{}
}

func (b *windowsBackend) Monitors() ([]geom.Rect, error) {
	var monitors []geom.Rect
	cb := windows.NewCallback(func(hMonitor, hdc uintptr, rc *winRect, lparam uintptr) uintptr {
		monitors = append(monitors, geom.Rect{
			Left:   int(rc.Left),
			Top:    int(rc.Top),
			Right:  int(rc.Right),
			Bottom: int(rc.Bottom),
		})
		return 1
	})
	ret, _, _ := procEnumDisplayMonitors.Call(0, 0, cb, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed")
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors detected")
	}
	return monitors, nil
}

func (b *windowsBackend) ForegroundWindow() (geom.Rect, bool, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return geom.Rect{}, false, nil
	}
	var rc winRect
	ret, _, _ := procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&rc)))
	if ret == 0 {
		return geom.Rect{}, false, fmt.Errorf("GetWindowRect failed")
	}
	return geom.Rect{
		Left:   int(rc.Left),
		Top:    int(rc.Top),
		Right:  int(rc.Right),
		Bottom: int(rc.Bottom),
	}, true, nil
}

func (b *windowsBackend) CaptureRect(rect geom.Rect) ([]byte, error) {
	width, height := rect.Width(), rect.Height()
	if width == 0 || height == 0 {
		return nil, nil
	}

	hdcScreen, _, _ := procGetDC.Call(0)
	if hdcScreen == 0 {
		return nil, fmt.Errorf("GetDC failed")
	}
	defer procReleaseDC.Call(0, hdcScreen)

	hdcMem, _, _ := procCreateCompatibleDC.Call(hdcScreen)
	if hdcMem == 0 {
		return nil, fmt.Errorf("CreateCompatibleDC failed")
	}
	defer procDeleteDC.Call(hdcMem)

	bitmap, _, _ := procCreateCompatibleBmp.Call(hdcScreen, uintptr(width), uintptr(height))
	if bitmap == 0 {
		return nil, fmt.Errorf("CreateCompatibleBitmap failed")
	}
	defer procDeleteObject.Call(bitmap)

	if ret, _, _ := procSelectObject.Call(hdcMem, bitmap); ret == 0 {
		return nil, fmt.Errorf("SelectObject failed")
	}
	if ret, _, _ := procBitBlt.Call(hdcMem, 0, 0, uintptr(width), uintptr(height),
		hdcScreen, uintptr(rect.Left), uintptr(rect.Top), srccopy); ret == 0 {
		return nil, fmt.Errorf("BitBlt failed")
	}

	bmi := bitmapInfo{Header: bitmapInfoHeader{
		Size:     uint32(unsafe.Sizeof(bitmapInfoHeader{})),
		Width:    int32(width),
		Height:   -int32(height), // top-down rows
		Planes:   1,
		BitCount: 32,
	}}
	buf := make([]byte, width*height*4)
	if ret, _, _ := procGetDIBits.Call(hdcMem, bitmap, 0, uintptr(height),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&bmi)), 0); ret == 0 {
		return nil, fmt.Errorf("GetDIBits failed")
	}

	return encodeBGRA(buf, width, height)
}

// encodeBGRA converts a 32-bit BGRA pixel buffer to PNG bytes.
func encodeBGRA(buf []byte, width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i+3 < len(buf); i += 4 {
		img.Pix[i] = buf[i+2]   // R
		img.Pix[i+1] = buf[i+1] // G
		img.Pix[i+2] = buf[i]   // B
		img.Pix[i+3] = 0xFF
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
