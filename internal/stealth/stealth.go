// Package stealth provides the human-behavior primitives the browser
// layer uses: jittered delays, Bézier-curve mouse movement, paced
// typing with occasional corrected typos, natural scrolling, and
// fingerprint masking.
package stealth

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// Point is a 2D page coordinate.
type Point struct {
	X float64
	Y float64
}

// RandomDelay returns a random duration between min and max.
func RandomDelay(min, max time.Duration) time.Duration {
	if min >= max {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)))
}

// ShortDelay returns a short random delay for between micro-actions.
func ShortDelay() time.Duration {
	return RandomDelay(100*time.Millisecond, 500*time.Millisecond)
}

// ThinkPause sleeps for a human thinking-time interval.
func ThinkPause() {
	time.Sleep(RandomDelay(2*time.Second, 8*time.Second))
}

// KeystrokeDelay returns a realistic inter-keystroke delay: slower for
// the first few characters, occasional longer mid-text pauses, ±40%
// jitter.
func KeystrokeDelay(position int) time.Duration {
	base := 150 * time.Millisecond
	if position < 5 {
		base = 200 * time.Millisecond
	}
	if rng.Float64() < 0.1 {
		base = RandomDelay(300*time.Millisecond, 800*time.Millisecond)
	}
	factor := 1.0 + (rng.Float64()*2-1)*0.4
	return time.Duration(float64(base) * factor)
}

// ShouldTypo reports whether the next keystroke should be a corrected
// typo, given the configured typo rate (0..1).
func ShouldTypo(rate float64) bool {
	return rng.Float64() < rate
}

// Typo returns an adjacent-key replacement for a character on a QWERTY
// layout, or the character itself when it has no neighbors mapped.
func Typo(char rune) rune {
	typoMap := map[rune][]rune{
		'a': {'s', 'q', 'w', 'z'},
		'b': {'v', 'g', 'h', 'n'},
		'c': {'x', 'd', 'f', 'v'},
		'd': {'s', 'e', 'r', 'f', 'c', 'x'},
		'e': {'w', 'r', 'd', 's'},
		'f': {'d', 'r', 't', 'g', 'v', 'c'},
		'g': {'f', 't', 'y', 'h', 'b', 'v'},
		'h': {'g', 'y', 'u', 'j', 'n', 'b'},
		'i': {'u', 'o', 'k', 'j'},
		'j': {'h', 'u', 'i', 'k', 'm', 'n'},
		'k': {'j', 'i', 'o', 'l', 'm'},
		'l': {'k', 'o', 'p'},
		'm': {'n', 'j', 'k'},
		'n': {'b', 'h', 'j', 'm'},
		'o': {'i', 'p', 'l', 'k'},
		'p': {'o', 'l'},
		'q': {'w', 'a'},
		'r': {'e', 't', 'f', 'd'},
		's': {'a', 'w', 'e', 'd', 'x', 'z'},
		't': {'r', 'y', 'g', 'f'},
		'u': {'y', 'i', 'j', 'h'},
		'v': {'c', 'f', 'g', 'b'},
		'w': {'q', 'e', 's', 'a'},
		'x': {'z', 's', 'd', 'c'},
		'y': {'t', 'u', 'h', 'g'},
		'z': {'a', 's', 'x'},
	}

	lower := rune(strings.ToLower(string(char))[0])
	if typos, ok := typoMap[lower]; ok && len(typos) > 0 {
		return typos[rng.Intn(len(typos))]
	}
	return char
}

// MoveMouse moves the cursor to target coordinates along a cubic Bézier
// path with ease-in-ease-out speed and a 30% chance of a small
// overshoot-and-correct at the end.
func MoveMouse(page *rod.Page, targetX, targetY float64) error {
	start := Point{X: rng.Float64() * 100, Y: rng.Float64() * 100}
	end := Point{X: targetX, Y: targetY}

	c1, c2 := controlPoints(start, end)
	path := CubicBezierCurve(start, end, c1, c2, 50)
	for i, pt := range path {
		progress := float64(i) / float64(len(path))
		_ = proto.InputDispatchMouseEvent{
			Type: proto.InputDispatchMouseEventTypeMouseMoved,
			X:    pt.X,
			Y:    pt.Y,
		}.Call(page)
		time.Sleep(mouseStepDelay(progress))
	}

	if rng.Float64() < 0.3 {
		_ = proto.InputDispatchMouseEvent{
			Type: proto.InputDispatchMouseEventTypeMouseMoved,
			X:    targetX + (rng.Float64()-0.5)*5,
			Y:    targetY + (rng.Float64()-0.5)*5,
		}.Call(page)
		time.Sleep(RandomDelay(10*time.Millisecond, 30*time.Millisecond))
		_ = proto.InputDispatchMouseEvent{
			Type: proto.InputDispatchMouseEventTypeMouseMoved,
			X:    targetX,
			Y:    targetY,
		}.Call(page)
	}
	return nil
}

// CubicBezierCurve generates steps points along the curve defined by
// start, end and two control points.
func CubicBezierCurve(start, end, c1, c2 Point, steps int) []Point {
	points := make([]Point, steps)
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps-1)
		u := 1 - t
		points[i] = Point{
			X: math.Pow(u, 3)*start.X + 3*math.Pow(u, 2)*t*c1.X + 3*u*math.Pow(t, 2)*c2.X + math.Pow(t, 3)*end.X,
			Y: math.Pow(u, 3)*start.Y + 3*math.Pow(u, 2)*t*c1.Y + 3*u*math.Pow(t, 2)*c2.Y + math.Pow(t, 3)*end.Y,
		}
	}
	return points
}

func controlPoints(start, end Point) (Point, Point) {
	dx := end.X - start.X
	dy := end.Y - start.Y
	distance := math.Sqrt(dx*dx + dy*dy)
	perp := math.Atan2(dy, dx) + math.Pi/2

	o1 := (rng.Float64() - 0.5) * distance * 0.3
	o2 := (rng.Float64() - 0.5) * distance * 0.3
	c1 := Point{
		X: start.X + dx/3 + math.Cos(perp)*o1,
		Y: start.Y + dy/3 + math.Sin(perp)*o1,
	}
	c2 := Point{
		X: start.X + 2*dx/3 + math.Cos(perp)*o2,
		Y: start.Y + 2*dy/3 + math.Sin(perp)*o2,
	}
	return c1, c2
}

// mouseStepDelay slows the cursor at the start and end of the path.
func mouseStepDelay(progress float64) time.Duration {
	speed := 1 - math.Abs(2*progress-1)
	return time.Duration(float64(10*time.Millisecond) / (speed + 0.5))
}

// ApplyStealthSettings runs the go-rod/stealth evasions once against
// the browser.
func ApplyStealthSettings(browser *rod.Browser) error {
	page, err := stealth.Page(browser)
	if err != nil {
		return fmt.Errorf("failed to apply stealth: %w", err)
	}
	page.Close()
	return nil
}

// DisableAutomationFlags masks webdriver and automation-related
// properties on an already-open page.
func DisableAutomationFlags(page *rod.Page) error {
	_, err := page.Eval(`() => {
		Object.defineProperty(navigator, 'webdriver', {
			get: () => false
		});
	}`)
	if err != nil {
		return fmt.Errorf("failed to disable webdriver flag: %w", err)
	}

	_, err = page.Eval(`() => {
		const originalQuery = window.navigator.permissions.query;
		window.navigator.permissions.query = (parameters) => (
			parameters.name === 'notifications' ?
				Promise.resolve({ state: Notification.permission }) :
				originalQuery(parameters)
		);

		window.chrome = {
			runtime: {}
		};

		Object.defineProperty(navigator, 'plugins', {
			get: () => [
				{
					0: {type: "application/x-google-chrome-pdf", suffixes: "pdf", description: "Portable Document Format"},
					description: "Portable Document Format",
					filename: "internal-pdf-viewer",
					length: 1,
					name: "Chrome PDF Plugin"
				}
			]
		});
	}`)
	if err != nil {
		return fmt.Errorf("failed to mask automation properties: %w", err)
	}
	return nil
}

// RandomizeUserAgent returns a realistic desktop Chrome user agent.
func RandomizeUserAgent() string {
	userAgents := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
	return userAgents[rng.Intn(len(userAgents))]
}

// SetRealisticViewport picks a common desktop resolution for the page.
func SetRealisticViewport(page *rod.Page) error {
	viewports := []struct{ Width, Height int }{
		{1920, 1080},
		{1366, 768},
		{1536, 864},
		{1440, 900},
		{1280, 720},
	}
	vp := viewports[rng.Intn(len(viewports))]
	return page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  vp.Width,
		Height: vp.Height,
	})
}

// ScrollPage scrolls the page a small random amount in steps, with an
// occasional slight correction back up.
func ScrollPage(page *rod.Page, direction string) error {
	amount := 50 + rng.Intn(150)
	if direction == "up" {
		amount = -amount
	}

	steps := 1 + rng.Intn(3)
	for i := 0; i < steps; i++ {
		_, err := page.Eval(fmt.Sprintf(`() => window.scrollBy(0, %d)`, amount/steps))
		if err != nil {
			return fmt.Errorf("failed to scroll: %w", err)
		}
		time.Sleep(RandomDelay(50*time.Millisecond, 150*time.Millisecond))
	}

	if rng.Float64() < 0.15 {
		correction := rng.Intn(30)
		page.Eval(fmt.Sprintf(`() => window.scrollBy(0, %d)`, -correction))
		time.Sleep(ShortDelay())
	}
	return nil
}

// ScrollFeed scrolls through the page content the way a reader would,
// pausing between scrolls and occasionally drifting back up.
func ScrollFeed(page *rod.Page, scrollCount int) error {
	for i := 0; i < scrollCount; i++ {
		if err := ScrollPage(page, "down"); err != nil {
			return err
		}
		time.Sleep(RandomDelay(1*time.Second, 4*time.Second))

		if rng.Float64() < 0.2 {
			ScrollPage(page, "up")
			time.Sleep(ShortDelay())
		}
	}
	return nil
}
