package text

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrNoFont is returned when no family in a preference list matches.
var ErrNoFont = errors.New("no matching font")

// Font is a parsed font registered under a family name.
type Font struct {
	Family string
	Path   string // source file, empty for embedded fonts

	sfnt *sfnt.Font
}

// Metrics are vertical font metrics in pixels at a given size. Descent is
// positive (distance below the baseline).
type Metrics struct {
	Ascent     float64
	Descent    float64
	LineGap    float64
	LineHeight float64
}

// ParseFont parses TrueType or OpenType data.
func ParseFont(data []byte) (*Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	var buf sfnt.Buffer
	family, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		family = ""
	}
	return &Font{Family: family, sfnt: f}, nil
}

// Metrics returns the font's vertical metrics at size pixels.
func (f *Font) Metrics(size float64) (Metrics, error) {
	var buf sfnt.Buffer
	m, err := f.sfnt.Metrics(&buf, toFixed(size), font.HintingNone)
	if err != nil {
		return Metrics{}, fmt.Errorf("reading metrics of %q: %w", f.Family, err)
	}
	ascent, descent, height := fromFixed(m.Ascent), fromFixed(m.Descent), fromFixed(m.Height)
	if descent < 0 {
		descent = -descent
	}
	gap := height - ascent - descent
	if gap < 0 {
		gap = 0
	}
	return Metrics{
		Ascent:     ascent,
		Descent:    descent,
		LineGap:    gap,
		LineHeight: ascent + descent + gap,
	}, nil
}

// Face returns a rasterizable face at size pixels (72 DPI, so points equal
// pixels).
func (f *Font) Face(size float64) (font.Face, error) {
	return opentype.NewFace(f.sfnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Library is an in-process font-matching service. It maps family names
// and aliases, case-insensitively, to parsed fonts. It is safe for
// concurrent use.
type Library struct {
	fs  afero.Fs
	log *zap.Logger

	mu      sync.RWMutex
	fonts   map[string]*Font
	aliases map[string]string
}

// DefaultAliases map the CSS generic families onto the embedded Go fonts.
var DefaultAliases = map[string]string{
	"sans-serif": "Go",
	"serif":      "Go",
	"system-ui":  "Go",
	"monospace":  "Go Mono",
}

// NewLibrary creates an empty library reading font files from fs.
func NewLibrary(fs afero.Fs, log *zap.Logger) *Library {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Library{
		fs:      fs,
		log:     log,
		fonts:   make(map[string]*Font),
		aliases: make(map[string]string),
	}
}

// NewDefaultLibrary returns a library holding the Go fonts and the default
// generic-family aliases.
func NewDefaultLibrary(log *zap.Logger) (*Library, error) {
	l := NewLibrary(nil, log)
	if err := l.RegisterGoFonts(); err != nil {
		return nil, err
	}
	for alias, family := range DefaultAliases {
		l.Alias(alias, family)
	}
	return l, nil
}

// Register parses data and registers it under its name-table family, or
// under family when that is non-empty.
func (l *Library) Register(family string, data []byte) (*Font, error) {
	f, err := ParseFont(data)
	if err != nil {
		return nil, err
	}
	if family != "" {
		f.Family = family
	}
	if f.Family == "" {
		return nil, fmt.Errorf("font has no family name")
	}
	l.add(f)
	return f, nil
}

// RegisterFile loads a font file and registers it under its family name.
func (l *Library) RegisterFile(path string) (*Font, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", path, err)
	}
	f, err := ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if f.Family == "" {
		f.Family = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	f.Path = path
	l.add(f)
	return f, nil
}

// ScanDir registers every .ttf and .otf file below dir. Unparsable files
// are logged and skipped. It returns the number of fonts registered.
func (l *Library) ScanDir(dir string) (int, error) {
	count := 0
	err := afero.Walk(l.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf":
		default:
			return nil
		}
		f, err := l.RegisterFile(path)
		if err != nil {
			l.log.Warn("skipping font", zap.String("path", path), zap.Error(err))
			return nil
		}
		l.log.Debug("registered font", zap.String("family", f.Family), zap.String("path", path))
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return count, nil
}

// RegisterGoFonts registers the embedded Go font family.
func (l *Library) RegisterGoFonts() error {
	for family, data := range map[string][]byte{
		"Go":           goregular.TTF,
		"Go Bold":      gobold.TTF,
		"Go Mono":      gomono.TTF,
		"Go Mono Bold": gomonobold.TTF,
	} {
		if _, err := l.Register(family, data); err != nil {
			return fmt.Errorf("registering %s: %w", family, err)
		}
	}
	return nil
}

// Alias makes name resolve to family.
func (l *Library) Alias(name, family string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.aliases[normalize(name)] = family
}

// Match returns the font registered for family, following one level of
// aliasing.
func (l *Library) Match(family string) (*Font, error) {
	key := normalize(family)
	l.mu.RLock()
	defer l.mu.RUnlock()
	if f, ok := l.fonts[key]; ok {
		return f, nil
	}
	if target, ok := l.aliases[key]; ok {
		if f, ok := l.fonts[normalize(target)]; ok {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoFont, family)
}

// Families lists the registered family names, sorted.
func (l *Library) Families() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.fonts))
	for _, f := range l.fonts {
		names = append(names, f.Family)
	}
	sort.Strings(names)
	return names
}

func (l *Library) add(f *Font) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fonts[normalize(f.Family)] = f
}

func normalize(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}
