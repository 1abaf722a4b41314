package services

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wenlng/go-captcha/v2/rotate"
	xdraw "golang.org/x/image/draw"
)

// CaptchaService guards the admin login form with a rotate captcha.
//
// Generate returns a challenge id plus master and thumb images as base64; the
// dashboard renders them and posts back the angle the user applied. A challenge
// is consumed by its first verification attempt, successful or not.
type CaptchaService interface {
	GenerateRotate(ctx context.Context) (*RotateChallenge, error)
	VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool
	Close()
}

type RotateChallenge struct {
	ID                string
	MasterImageBase64 string
	ThumbImageBase64  string
}

var errCaptchaNoData = errors.New("captcha generator returned no data")

type captchaServiceImpl struct {
	rotator   rotate.Captcha
	store     *challengeStore
	padding   int
	imgSizePx int
}

// NewCaptchaServiceRotate constructs a CaptchaService using rotate mode.
// padding is the accepted angle difference in degrees.
func NewCaptchaServiceRotate(ttl time.Duration, padding int, imgSizePx int) (CaptchaService, error) {
	if imgSizePx <= 0 {
		imgSizePx = 220
	}

	builder := rotate.NewBuilder(
		rotate.WithImageSquareSize(imgSizePx),
	)
	builder.SetResources(
		rotate.WithImages(generateRotateBackgrounds(3, imgSizePx)),
	)

	return &captchaServiceImpl{
		rotator:   builder.Make(),
		store:     newChallengeStore(ttl),
		padding:   padding,
		imgSizePx: imgSizePx,
	}, nil
}

func (s *captchaServiceImpl) GenerateRotate(ctx context.Context) (*RotateChallenge, error) {
	captData, err := s.rotator.Generate()
	if err != nil {
		return nil, err
	}

	block := captData.GetData()
	if block == nil {
		return nil, errCaptchaNoData
	}

	masterB64, err := captData.GetMasterImage().ToBase64()
	if err != nil {
		return nil, err
	}
	thumbB64, err := captData.GetThumbImage().ToBase64()
	if err != nil {
		return nil, err
	}

	challengeID := uuid.New().String()
	s.store.Set(challengeID, block.Angle)

	return &RotateChallenge{
		ID:                challengeID,
		MasterImageBase64: masterB64,
		ThumbImageBase64:  thumbB64,
	}, nil
}

func (s *captchaServiceImpl) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	target, ok := s.store.Take(challengeID)
	if !ok {
		return false
	}
	return rotate.Validate(int(math.Round(userAngle)), target, s.padding)
}

func (s *captchaServiceImpl) Close() {
	s.store.Close()
}

type challengeEntry struct {
	targetAngle int
	expiresAt   time.Time
}

// challengeStore holds pending challenges in memory until they are taken or expire
type challengeStore struct {
	mu   sync.Mutex
	m    map[string]challengeEntry
	ttl  time.Duration
	done chan struct{}
	once sync.Once
}

func newChallengeStore(ttl time.Duration) *challengeStore {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	cs := &challengeStore{
		m:    make(map[string]challengeEntry),
		ttl:  ttl,
		done: make(chan struct{}),
	}
	go cs.cleanupLoop()
	return cs
}

func (s *challengeStore) Set(id string, angle int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = challengeEntry{targetAngle: angle, expiresAt: time.Now().Add(s.ttl)}
}

// Take removes the challenge and returns its angle if it has not expired
func (s *challengeStore) Take(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		return 0, false
	}
	delete(s.m, id)
	if time.Now().After(e.expiresAt) {
		return 0, false
	}
	return e.targetAngle, true
}

func (s *challengeStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *challengeStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for k, v := range s.m {
				if now.After(v.expiresAt) {
					delete(s.m, k)
				}
			}
			s.mu.Unlock()
		}
	}
}

// generateRotateBackgrounds paints small noisy gradients and upscales them, which gives soft blotches instead of per-pixel grain
func generateRotateBackgrounds(n int, size int) []image.Image {
	if n <= 0 {
		n = 1
	}
	small := size / 4
	if small < 16 {
		small = size
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		src := newNoiseGradientImage(small, small)
		dst := image.NewRGBA(image.Rect(0, 0, size, size))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
		drawRect(dst, 10, 10, size/3, size/12, color.RGBA{R: 255, G: 255, B: 255, A: 32})
		drawRect(dst, size/2, size/3, size/3, size/10, color.RGBA{R: 0, G: 0, B: 0, A: 24})
		imgs = append(imgs, dst)
	}
	return imgs
}

func newNoiseGradientImage(w, h int) *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := float64(x - w/2)
			dy := float64(y - h/2)
			t := math.Sqrt(dx*dx+dy*dy) / float64(w/2)
			if t > 1 {
				t = 1
			}
			base := uint8(200 - int(150*t))
			noise := uint8(rand.Intn(30))
			rgba.Set(x, y, color.RGBA{R: base + noise/3, G: base, B: 255 - base/2, A: 255})
		}
	}
	return rgba
}

func drawRect(dst *image.RGBA, x, y, w, h int, c color.RGBA) {
	rect := image.Rect(x, y, x+w, y+h)
	draw.Draw(dst, rect, &image.Uniform{C: c}, image.Point{}, draw.Over)
}
