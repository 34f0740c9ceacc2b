package report

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"adreport/pkg/logger"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSize in points
type FontSize float64

const (
	FontSizeSmall  FontSize = 11
	FontSizeMedium FontSize = 13
	FontSizeTitle  FontSize = 18
)

// FontManager loads one outline font with Hangul coverage and caches faces
// per size. Without a usable font it hands out basicfont, which only covers
// ASCII.
type FontManager struct {
	mu       sync.Mutex
	paths    []string
	loaded   bool
	font     *truetype.Font
	faces    map[FontSize]font.Face
	fallback font.Face
}

// NewFontManager creates a font manager. An explicit path is tried before
// the platform defaults.
func NewFontManager(path string) *FontManager {
	paths := systemFontPaths()
	if path != "" {
		paths = append([]string{path}, paths...)
	}
	return &FontManager{
		paths:    paths,
		faces:    make(map[FontSize]font.Face),
		fallback: basicfont.Face7x13,
	}
}

// Face returns a face for size
func (fm *FontManager) Face(size FontSize) font.Face {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	if !fm.loaded {
		fm.font = fm.load()
		fm.loaded = true
	}
	if fm.font == nil {
		return fm.fallback
	}
	if face, ok := fm.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(fm.font, &truetype.Options{Size: float64(size), Hinting: font.HintingFull})
	fm.faces[size] = face
	return face
}

func (fm *FontManager) load() *truetype.Font {
	for _, p := range fm.paths {
		f, err := loadFontFromPath(p)
		if err != nil {
			continue
		}
		logger.Debug("Chart font loaded", zap.String("path", p))
		return f
	}
	logger.Warn("No outline font found, charts fall back to ASCII labels")
	return nil
}

func loadFontFromPath(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	return f, nil
}

// systemFontPaths lists single-face TrueType fonts with Hangul glyphs.
// Collections (.ttc) are left out because truetype.Parse reads only plain
// font files.
func systemFontPaths() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Library/Fonts/NanumGothic.ttf",
			"/System/Library/Fonts/Supplemental/AppleGothic.ttf",
			"/Library/Fonts/Arial Unicode.ttf",
		}
	case "windows":
		return []string{
			`C:\Windows\Fonts\malgun.ttf`,
			`C:\Windows\Fonts\arial.ttf`,
		}
	default:
		return []string{
			"/usr/share/fonts/truetype/nanum/NanumGothic.ttf",
			"/usr/share/fonts/nanum/NanumGothic.ttf",
			"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		}
	}
}
