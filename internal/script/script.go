package script

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// DefaultFadeMargin crossfade süresi ve kesit genişletme payı (saniye)
const DefaultFadeMargin = 5

// maxClockField dakika ve saniye alanlarının üst sınırı (~69 gün)
const maxClockField = 100000

var (
	commentLine = regexp.MustCompile(`^\s*#`)
	fileLine    = regexp.MustCompile(`^\s*-(\s.*)?$`)
	rangeLine   = regexp.MustCompile(`(\d+):(\d+)-(\d+):(\d+)`)
)

// TimeRange kaynak dosyadan alınacak bir kesiti tutar (saniye cinsinden)
type TimeRange struct {
	Begin    int `json:"begin"`
	Duration int `json:"duration"`
}

// End kesitin bitiş saniyesini döner
func (r TimeRange) End() int {
	return r.Begin + r.Duration
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%s-%s", formatClock(r.Begin), formatClock(r.End()))
}

// Directive bir kaynak dosyayı ve sıralı kesitlerini tutar
type Directive struct {
	Source string      `json:"source"`
	Ranges []TimeRange `json:"ranges"`
}

// CropInfo kaynak dosya -> kesit listesi eşlemesi.
// Ekleme sırası korunur; çıktı sırası bu sıradır.
type CropInfo struct {
	order  []string
	ranges map[string][]TimeRange
}

// NewCropInfo boş bir CropInfo oluşturur
func NewCropInfo() *CropInfo {
	return &CropInfo{ranges: make(map[string][]TimeRange)}
}

// Reset kaynağın kesit listesini boşaltır. Kaynak daha önce görüldüyse
// ilk göründüğü sıradaki yerini korur.
func (c *CropInfo) Reset(source string) {
	if _, ok := c.ranges[source]; !ok {
		c.order = append(c.order, source)
	}
	c.ranges[source] = []TimeRange{}
}

// Append kaynağın listesine kesit ekler
func (c *CropInfo) Append(source string, r TimeRange) {
	if _, ok := c.ranges[source]; !ok {
		c.order = append(c.order, source)
	}
	c.ranges[source] = append(c.ranges[source], r)
}

// Has kaynağın tanımlı olup olmadığını döner
func (c *CropInfo) Has(source string) bool {
	_, ok := c.ranges[source]
	return ok
}

// Ranges kaynağın kesitlerinin kopyasını döner
func (c *CropInfo) Ranges(source string) []TimeRange {
	return append([]TimeRange(nil), c.ranges[source]...)
}

// Sources kaynakları ekleme sırasıyla döner
func (c *CropInfo) Sources() []string {
	return append([]string(nil), c.order...)
}

// Directives tüm kaynakları sırasıyla döner
func (c *CropInfo) Directives() []Directive {
	out := make([]Directive, 0, len(c.order))
	for _, src := range c.order {
		out = append(out, Directive{Source: src, Ranges: c.Ranges(src)})
	}
	return out
}

// Len kaynak sayısı
func (c *CropInfo) Len() int {
	return len(c.order)
}

// RangeCount toplam kesit sayısı
func (c *CropInfo) RangeCount() int {
	n := 0
	for _, src := range c.order {
		n += len(c.ranges[src])
	}
	return n
}

// Options parser ayarları
type Options struct {
	Fade       bool
	FadeMargin int
}

func (o Options) margin() int {
	if o.FadeMargin > 0 {
		return o.FadeMargin
	}
	return DefaultFadeMargin
}

// ParseError script satırı yorumlanamadığında döner
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("script satir %d: %s: %q", e.Line, e.Msg, e.Text)
}

// Warning hata sayılmayan ama kullanıcıya bildirilmesi gereken satırlar
type Warning struct {
	Line int
	Text string
	Msg  string
}

func (w Warning) String() string {
	return fmt.Sprintf("satir %d: %s: %q", w.Line, w.Msg, w.Text)
}

// Result parse sonucu
type Result struct {
	Crops    *CropInfo
	Warnings []Warning
}

// Parse script metnini okur
func Parse(r io.Reader, opts Options) (Result, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return Result{}, err
	}
	return ParseLines(lines, opts)
}

// ReadLines r'yi satır satır okur
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("script okunamadi: %w", err)
	}
	return lines, nil
}

// ParseLines script satırlarını CropInfo'ya çevirir.
//
// Aynı dosya adı ikinci kez görülürse o dosyanın kesit listesi sıfırlanır.
// Tanınmayan satırlar hata değildir, Warnings içinde döner.
func ParseLines(lines []string, opts Options) (Result, error) {
	res := Result{Crops: NewCropInfo()}
	current := ""
	haveFile := false

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, " \t\r\n")

		if commentLine.MatchString(line) {
			continue
		}

		if m := fileLine.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			if name == "" {
				return Result{}, &ParseError{Line: lineNo, Text: raw, Msg: "dosya adi bos"}
			}
			if res.Crops.Has(name) {
				res.Warnings = append(res.Warnings, Warning{Line: lineNo, Text: raw, Msg: "dosya yeniden tanimlandi, onceki kesitler silindi"})
			}
			res.Crops.Reset(name)
			current = name
			haveFile = true
			continue
		}

		if m := rangeLine.FindStringSubmatch(line); m != nil {
			if !haveFile {
				return Result{}, &ParseError{Line: lineNo, Text: raw, Msg: "kesit satirindan once dosya tanimlanmamis"}
			}
			r, err := rangeFromMatch(m)
			if err != nil {
				return Result{}, &ParseError{Line: lineNo, Text: raw, Msg: err.Error()}
			}
			if opts.Fade {
				r = Widen(r, opts.margin())
			}
			res.Crops.Append(current, r)
			continue
		}

		if strings.TrimSpace(line) != "" {
			res.Warnings = append(res.Warnings, Warning{Line: lineNo, Text: raw, Msg: "taninmayan satir yok sayildi"})
		}
	}

	return res, nil
}

// Widen crossfade için kesiti öne doğru genişletir.
// Başlangıç 0'ın altına inmez, süre her durumda margin kadar uzar.
func Widen(r TimeRange, margin int) TimeRange {
	begin := r.Begin - margin
	if begin < 0 {
		begin = 0
	}
	return TimeRange{Begin: begin, Duration: r.Duration + margin}
}

func rangeFromMatch(m []string) (TimeRange, error) {
	nums := make([]int, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v > maxClockField {
			return TimeRange{}, fmt.Errorf("gecersiz sayi: %s", m[i+1])
		}
		nums[i] = v
	}
	begin := nums[0]*60 + nums[1]
	end := nums[2]*60 + nums[3]
	if end <= begin {
		return TimeRange{}, fmt.Errorf("bitis baslangictan sonra olmali")
	}
	return TimeRange{Begin: begin, Duration: end - begin}, nil
}

func formatClock(sec int) string {
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
