package installer

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/mlihgenel/slidecast-cli/internal/engine"
)

// InstallInfo kurulum bilgisini tutar
type InstallInfo struct {
	ToolName    string
	Command     string
	Args        []string
	Description string
	ManualURL   string
	Supported   bool // Otomatik kurulum destekleniyor mu
}

// ToolStatus bir dış aracın durumu
type ToolStatus struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Found bool   `json:"found"`
	Error string `json:"error,omitempty"`
}

var packageManagers = map[string][]string{
	"darwin":  {"brew"},
	"linux":   {"apt", "dnf", "yum", "pacman"},
	"windows": {"choco", "winget"},
}

// DetectPackageManager mevcut paket yöneticisini tespit eder
func DetectPackageManager() string {
	for _, pm := range packageManagers[runtime.GOOS] {
		if _, err := exec.LookPath(pm); err == nil {
			return pm
		}
	}
	return ""
}

// GetInstallInfo ffmpeg (ffprobe ile birlikte gelir) için kurulum bilgisini döner
func GetInstallInfo() InstallInfo {
	return installInfoFor(DetectPackageManager())
}

func installInfoFor(pm string) InstallInfo {
	info := InstallInfo{
		ToolName:  "FFmpeg",
		ManualURL: "https://ffmpeg.org/download.html",
		Supported: true,
	}

	switch pm {
	case "brew":
		info.Command = "brew"
		info.Args = []string{"install", "ffmpeg"}
	case "apt":
		info.Command = "sudo"
		info.Args = []string{"apt", "install", "-y", "ffmpeg"}
	case "dnf":
		info.Command = "sudo"
		info.Args = []string{"dnf", "install", "-y", "ffmpeg"}
	case "yum":
		info.Command = "sudo"
		info.Args = []string{"yum", "install", "-y", "ffmpeg"}
	case "pacman":
		info.Command = "sudo"
		info.Args = []string{"pacman", "-S", "--noconfirm", "ffmpeg"}
	case "choco":
		info.Command = "choco"
		info.Args = []string{"install", "ffmpeg", "-y"}
	case "winget":
		info.Command = "winget"
		info.Args = []string{"install", "Gyan.FFmpeg"}
	default:
		info.Supported = false
		return info
	}

	info.Description = info.Command
	for _, a := range info.Args {
		info.Description += " " + a
	}
	return info
}

// InstallFFmpeg paket yöneticisiyle ffmpeg kurar
func InstallFFmpeg() (string, error) {
	info := GetInstallInfo()

	if !info.Supported {
		return "", fmt.Errorf(
			"%s otomatik olarak kurulamıyor.\nManuel kurulum: %s",
			info.ToolName, info.ManualURL,
		)
	}

	cmd := exec.Command(info.Command, info.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s kurulumu başarısız: %w", info.ToolName, err)
	}

	return info.Description, nil
}

// Check ffmpeg ve ffprobe'un bulunup bulunmadığını raporlar.
// ffmpegPath boş değilse önce o denenir.
func Check(ffmpegPath string) []ToolStatus {
	var out []ToolStatus
	for _, t := range []struct {
		name string
		find func(string) (string, error)
		hint string
	}{
		{"ffmpeg", engine.FindFFmpeg, ffmpegPath},
		{"ffprobe", engine.FindFFprobe, ""},
	} {
		status := ToolStatus{Name: t.name}
		if p, err := t.find(t.hint); err == nil {
			status.Path, status.Found = p, true
		} else {
			status.Error = err.Error()
		}
		out = append(out, status)
	}
	return out
}

// Missing Check sonucundan eksik araç isimlerini döner
func Missing(statuses []ToolStatus) []string {
	var missing []string
	for _, s := range statuses {
		if !s.Found {
			missing = append(missing, s.Name)
		}
	}
	return missing
}
