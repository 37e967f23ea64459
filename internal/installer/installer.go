package installer

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
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

// DetectPackageManager mevcut paket yöneticisini tespit eder
func DetectPackageManager() string {
	switch runtime.GOOS {
	case "darwin":
		if _, err := exec.LookPath("brew"); err == nil {
			return "brew"
		}
		return ""
	case "linux":
		// apt (Debian/Ubuntu)
		if _, err := exec.LookPath("apt"); err == nil {
			return "apt"
		}
		// dnf (Fedora)
		if _, err := exec.LookPath("dnf"); err == nil {
			return "dnf"
		}
		// yum (CentOS/RHEL)
		if _, err := exec.LookPath("yum"); err == nil {
			return "yum"
		}
		// pacman (Arch)
		if _, err := exec.LookPath("pacman"); err == nil {
			return "pacman"
		}
		return ""
	case "windows":
		// Chocolatey
		if _, err := exec.LookPath("choco"); err == nil {
			return "choco"
		}
		// Winget
		if _, err := exec.LookPath("winget"); err == nil {
			return "winget"
		}
		return ""
	}
	return ""
}

// FFmpegInstallInfo FFmpeg için kurulum bilgilerini döner. FFprobe aynı
// paketle gelir, ayrı kurulum gerekmez.
func FFmpegInstallInfo() InstallInfo {
	info := InstallInfo{
		ToolName:  "FFmpeg",
		ManualURL: "https://ffmpeg.org/download.html",
	}

	switch DetectPackageManager() {
	case "brew":
		info.Command = "brew"
		info.Args = []string{"install", "ffmpeg"}
		info.Description = "brew install ffmpeg"
		info.Supported = true
	case "apt":
		info.Command = "sudo"
		info.Args = []string{"apt", "install", "-y", "ffmpeg"}
		info.Description = "sudo apt install -y ffmpeg"
		info.Supported = true
	case "dnf":
		info.Command = "sudo"
		info.Args = []string{"dnf", "install", "-y", "ffmpeg"}
		info.Description = "sudo dnf install -y ffmpeg"
		info.Supported = true
	case "yum":
		info.Command = "sudo"
		info.Args = []string{"yum", "install", "-y", "ffmpeg"}
		info.Description = "sudo yum install -y ffmpeg"
		info.Supported = true
	case "pacman":
		info.Command = "sudo"
		info.Args = []string{"pacman", "-S", "--noconfirm", "ffmpeg"}
		info.Description = "sudo pacman -S --noconfirm ffmpeg"
		info.Supported = true
	case "choco":
		info.Command = "choco"
		info.Args = []string{"install", "ffmpeg", "-y"}
		info.Description = "choco install ffmpeg -y"
		info.Supported = true
	case "winget":
		info.Command = "winget"
		info.Args = []string{"install", "Gyan.FFmpeg"}
		info.Description = "winget install Gyan.FFmpeg"
		info.Supported = true
	default:
		info.Supported = false
	}

	return info
}

// InstallFFmpeg FFmpeg'i paket yöneticisi ile kurar
func InstallFFmpeg() (string, error) {
	info := FFmpegInstallInfo()

	if !info.Supported {
		return "", fmt.Errorf(
			"FFmpeg otomatik olarak kurulamıyor.\nManuel kurulum: %s",
			info.ManualURL,
		)
	}

	cmd := exec.Command(info.Command, info.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("FFmpeg kurulumu başarısız: %w", err)
	}

	return info.Description, nil
}

// MissingTools PATH'te bulunmayan araçların isimlerini döner
func MissingTools() []string {
	var missing []string
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	return missing
}
