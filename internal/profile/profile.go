package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Definition hazır export ayarlarını tutar. Platform yükleme limitlerine
// göre hedef boyut ve çakışma politikası belirler.
type Definition struct {
	Name       string
	TargetMB   float64
	OnConflict string
	Desc       string
}

var builtins = map[string]Definition{
	"discord": {
		Name:       "discord",
		TargetMB:   10,
		OnConflict: "versioned",
		Desc:       "Discord ücretsiz yükleme limiti (10 MB)",
	},
	"discord-nitro": {
		Name:       "discord-nitro",
		TargetMB:   500,
		OnConflict: "versioned",
		Desc:       "Discord Nitro yükleme limiti (500 MB)",
	},
	"whatsapp": {
		Name:       "whatsapp",
		TargetMB:   16,
		OnConflict: "versioned",
		Desc:       "WhatsApp video paylaşım limiti (16 MB)",
	},
	"email": {
		Name:       "email",
		TargetMB:   25,
		OnConflict: "versioned",
		Desc:       "Yaygın e-posta eki limiti (25 MB)",
	},
	"telegram": {
		Name:       "telegram",
		TargetMB:   50,
		OnConflict: "versioned",
		Desc:       "Telegram bot API limiti (50 MB)",
	},
}

// Resolve isimden preset döner.
func Resolve(name string) (Definition, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Definition{}, fmt.Errorf("preset adi bos")
	}
	p, ok := builtins[key]
	if !ok {
		return Definition{}, fmt.Errorf("preset bulunamadi: %s (mevcut: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names built-in preset isimlerini döner.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
