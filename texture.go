package depthfx

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	// Decoders registered for image.Decode.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// TextureRole names which input a texture serves.
type TextureRole string

const (
	RoleColor TextureRole = "color"
	RoleDepth TextureRole = "depth"
)

// LoadError reports a texture fetch or decode failure.
type LoadError struct {
	Role TextureRole
	Src  string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s texture %q: %v", e.Role, e.Src, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// TextureSet is a decoded color + depth pair.
type TextureSet struct {
	Color *image.NRGBA
	Depth *image.NRGBA
}

// Ready reports whether both textures are present.
func (t TextureSet) Ready() bool {
	return t.Color != nil && t.Depth != nil
}

// TextureLoader fetches and decodes a TextureSet in the background.
type TextureLoader struct {
	client *http.Client

	mu     sync.Mutex
	set    TextureSet
	err    error
	done   chan struct{}
	cancel context.CancelFunc
}

// NewTextureLoader returns a loader whose HTTP requests time out after timeout
// (no timeout when zero).
func NewTextureLoader(timeout time.Duration) *TextureLoader {
	return &TextureLoader{
		client: &http.Client{
			Timeout:   timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		done: make(chan struct{}),
	}
}

// Start begins loading both textures concurrently and returns immediately.
// Start must be called at most once.
func (l *TextureLoader) Start(ctx context.Context, colorSrc, depthSrc string) {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.cancel = cancel
	l.mu.Unlock()

	go func() {
		defer close(l.done)
		defer cancel()

		var set TextureSet
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			img, err := l.load(gctx, RoleColor, colorSrc)
			set.Color = img
			return err
		})
		g.Go(func() error {
			img, err := l.load(gctx, RoleDepth, depthSrc)
			set.Depth = img
			return err
		})
		err := g.Wait()

		l.mu.Lock()
		if err != nil {
			l.err = err
		} else {
			l.set = set
		}
		l.mu.Unlock()

		if err != nil {
			Logger().Warn("texture load failed", "err", err)
			return
		}
		Logger().Info("textures loaded",
			"color", set.Color.Bounds().Size(),
			"depth", set.Depth.Bounds().Size())
	}()
}

// Stop cancels in-flight requests. Results that complete afterwards are
// still recorded but callers that disposed the effect ignore them.
func (l *TextureLoader) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Done is closed when loading has finished, successfully or not.
func (l *TextureLoader) Done() <-chan struct{} { return l.done }

// Ready reports whether both textures decoded successfully.
func (l *TextureLoader) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set.Ready()
}

// Err returns the *LoadError once loading has failed.
func (l *TextureLoader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Textures returns the decoded set. Both fields are nil until Ready.
func (l *TextureLoader) Textures() TextureSet {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set
}

func (l *TextureLoader) load(ctx context.Context, role TextureRole, src string) (*image.NRGBA, error) {
	img, err := l.fetch(ctx, src)
	if err != nil {
		return nil, &LoadError{Role: role, Src: src, Err: err}
	}
	return img, nil
}

func (l *TextureLoader) fetch(ctx context.Context, src string) (*image.NRGBA, error) {
	if src == "" {
		return nil, fmt.Errorf("empty source")
	}
	var r io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch: unexpected status %s", resp.Status)
		}
		r = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("open: %w", err)
		}
		r = f
	}
	defer r.Close()

	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts img to a straight-alpha NRGBA image at origin (0, 0).
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// ImageSampler samples an NRGBA image with nearest filtering. v = 0 is the
// bottom row.
type ImageSampler struct {
	img *image.NRGBA
}

// NewImageSampler wraps img.
func NewImageSampler(img *image.NRGBA) ImageSampler {
	return ImageSampler{img: img}
}

// Sample implements Sampler.
func (s ImageSampler) Sample(u, v float64) [4]float64 {
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return [4]float64{}
	}
	b := s.img.Rect
	w, h := b.Dx(), b.Dy()
	x := min(int(u*float64(w)), w-1)
	y := min(int((1-v)*float64(h)), h-1)
	off := s.img.PixOffset(b.Min.X+x, b.Min.Y+y)
	p := s.img.Pix[off : off+4 : off+4]
	return [4]float64{
		float64(p[0]) / 255,
		float64(p[1]) / 255,
		float64(p[2]) / 255,
		float64(p[3]) / 255,
	}
}

// ConstSampler returns the same texel everywhere inside [0, 1].
type ConstSampler [4]float64

// Sample implements Sampler.
func (c ConstSampler) Sample(u, v float64) [4]float64 {
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return [4]float64{}
	}
	return c
}
