package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/mlihgenel/videoclipper-cli/internal/planner"
)

// ErrBusy aynı kaynak için devam eden bir export varken yeni istek geldi.
var ErrBusy = errors.New("bu kaynak icin devam eden bir export var")

// EncodeFunc harici iki geçişli encode yeteneği. Planı ve aralığı alır,
// çıktıyı dst'ye yazar ve yazılan bayt sayısını döner.
type EncodeFunc func(ctx context.Context, src, dst string, plan planner.EncodePlan, trim planner.TrimRange) (int64, error)

// Request tek bir export işleminin girdileri.
type Request struct {
	SourcePath string
	Source     planner.SourceInfo
	Trim       planner.TrimRange
	TargetMB   float64
	OutputPath string
}

// Result kabul edilen export'un özeti.
type Result struct {
	OutputPath      string
	Plan            planner.EncodePlan
	ActualBytes     int64
	Attempts        int
	WithinTolerance bool
	// CorrectedMB son denemeyi besleyen düzeltilmiş hedef (ilk denemede istekle aynı).
	CorrectedMB float64
}

// state supervisor durum makinesi.
type state int

const (
	statePlanning state = iota
	stateEncoding
	stateVerifying
	stateAccepted
	stateFailed
)

// Supervisor bir export işlemini planlama/encode/doğrulama döngüsüyle
// yürütür. Kaynak başına tek işlem çalışır; eşzamanlı istek ErrBusy alır.
type Supervisor struct {
	Config planner.Config
	Encode EncodeFunc

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewSupervisor verilen encode yeteneği ile bir supervisor oluşturur.
func NewSupervisor(cfg planner.Config, encode EncodeFunc) *Supervisor {
	return &Supervisor{
		Config:   cfg,
		Encode:   encode,
		inflight: make(map[string]struct{}),
	}
}

// Run export'u bloklayarak çalıştırır. Kabul edilen çıktı geçici yoldan son
// yola taşınır; iptal veya hata durumunda son yolda dosya bırakılmaz.
func (s *Supervisor) Run(ctx context.Context, req Request) (Result, error) {
	if err := s.acquire(req.SourcePath); err != nil {
		return Result{}, err
	}
	defer s.release(req.SourcePath)

	return s.run(ctx, req)
}

// Start export'u ayrı bir goroutine'de başlatır; sonuç kanaldan okunur.
// Sunum katmanı bloklanmadan ilerleme/sonuç bekleyebilsin diye vardır.
type Outcome struct {
	Result Result
	Err    error
}

func (s *Supervisor) Start(ctx context.Context, req Request) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		res, err := s.Run(ctx, req)
		ch <- Outcome{Result: res, Err: err}
		close(ch)
	}()
	return ch
}

func (s *Supervisor) run(ctx context.Context, req Request) (Result, error) {
	requestedMB := req.TargetMB
	planningMB := requestedMB
	targetBytes := requestedMB * 1_000_000

	// Kabul edilene kadar geçici dosyaya yazılır; son yola sadece rename ile geçilir.
	tmpPath := tempPathFor(req.OutputPath)
	defer os.Remove(tmpPath)

	var (
		current  state = statePlanning
		plan     planner.EncodePlan
		actual   int64
		attempts int
		lastErr  error
	)

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		switch current {
		case statePlanning:
			var err error
			plan, err = planner.ComputePlan(req.Source, req.Trim, planningMB, s.Config)
			if err != nil {
				// Aynı girdiyle tekrar denemek sonucu değiştirmez.
				lastErr = err
				current = stateFailed
				continue
			}
			current = stateEncoding

		case stateEncoding:
			attempts++
			n, err := s.Encode(ctx, req.SourcePath, tmpPath, plan, req.Trim)
			if err != nil {
				if ctx.Err() != nil {
					return Result{}, ctx.Err()
				}
				if attempts <= s.Config.MaxRetries {
					// Geçici süreç hatası: hedef değişmeden yeniden planla.
					lastErr = err
					current = statePlanning
					continue
				}
				lastErr = err
				current = stateFailed
				continue
			}
			actual = n
			current = stateVerifying

		case stateVerifying:
			if actual <= 0 {
				// Boş çıktı doğrulanamaz ve oransal düzeltmeye sokulamaz;
				// süreç hatası gibi ele alınır.
				lastErr = fmt.Errorf("encode bos cikti uretti (%d bayt)", actual)
				if attempts <= s.Config.MaxRetries {
					current = statePlanning
					continue
				}
				current = stateFailed
				continue
			}
			delta := math.Abs(float64(actual)-targetBytes) / targetBytes
			if delta <= s.Config.ToleranceRatio {
				current = stateAccepted
				continue
			}
			if attempts <= s.Config.MaxRetries {
				// Oransal düzeltme: büyük çıktı hedefi küçültür, küçük çıktı büyütür.
				actualMB := float64(actual) / 1_000_000
				planningMB = planningMB * (requestedMB / actualMB)
				current = statePlanning
				continue
			}
			// İki geçişli encode zaten yakınsar; kalan sapma raporlanarak kabul edilir.
			current = stateAccepted

		case stateAccepted:
			if err := os.Rename(tmpPath, req.OutputPath); err != nil {
				return Result{}, fmt.Errorf("cikti tasinamadi: %w", err)
			}
			delta := math.Abs(float64(actual)-targetBytes) / targetBytes
			return Result{
				OutputPath:      req.OutputPath,
				Plan:            plan,
				ActualBytes:     actual,
				Attempts:        attempts,
				WithinTolerance: delta <= s.Config.ToleranceRatio,
				CorrectedMB:     planningMB,
			}, nil

		case stateFailed:
			if attempts == 0 {
				// Planlama aşamasında düşüldü, ortada encode denemesi yok.
				return Result{}, fmt.Errorf("export basarisiz: %w", lastErr)
			}
			return Result{}, fmt.Errorf("export basarisiz (plan: %dk video / %dk ses, deneme %d): %w",
				plan.VideoKbps, plan.AudioKbps, attempts, lastErr)
		}
	}
}

func (s *Supervisor) acquire(sourcePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sourcePath]; busy {
		return fmt.Errorf("%w: %s", ErrBusy, sourcePath)
	}
	s.inflight[sourcePath] = struct{}{}
	return nil
}

func (s *Supervisor) release(sourcePath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sourcePath)
}

// tempPathFor son çıktıyla aynı dizinde gizli bir geçici yol üretir
// (aynı dosya sistemi, rename atomik kalsın diye).
func tempPathFor(outputPath string) string {
	dir := filepath.Dir(outputPath)
	return filepath.Join(dir, "."+uuid.NewString()[:8]+".part.mp4")
}
