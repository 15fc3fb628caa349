package assemble

import "github.com/mlihgenel/slidecast-cli/internal/script"

// Estimate motor çalıştırılmadan hesaplanan beklenen sonuç
type Estimate struct {
	Sources    int `json:"sources"`
	Ranges     int `json:"ranges"`
	RawSeconds int `json:"raw_seconds"` // kesit sürelerinin toplamı
	Joins      int `json:"joins"`       // iki seviyedeki toplam birleştirme sayısı
	Seconds    int `json:"seconds"`     // beklenen track süresi
}

// Expect script için beklenen track süresini hesaplar.
// Fade kapalıyken süre kesitlerin toplamıdır; açıkken her birleştirme
// toplamdan bir fade payı düşer.
func Expect(crops *script.CropInfo, opts Options) Estimate {
	var est Estimate
	volumes := 0
	for _, d := range crops.Directives() {
		if len(d.Ranges) == 0 {
			continue
		}
		volumes++
		est.Sources++
		est.Ranges += len(d.Ranges)
		for _, r := range d.Ranges {
			est.RawSeconds += r.Duration
		}
		est.Joins += len(d.Ranges) - 1
	}
	if volumes > 0 {
		est.Joins += volumes - 1
	}

	est.Seconds = est.RawSeconds
	if opts.Fade {
		est.Seconds -= est.Joins * opts.margin()
	}
	return est
}
