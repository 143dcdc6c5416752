package stealth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRandomDelayStaysInRange(t *testing.T) {
	min, max := 50*time.Millisecond, 200*time.Millisecond
	for i := 0; i < 100; i++ {
		d := RandomDelay(min, max)
		assert.GreaterOrEqual(t, d, min)
		assert.Less(t, d, max)
	}
}

func TestRandomDelayDegenerateRange(t *testing.T) {
	assert.Equal(t, time.Second, RandomDelay(time.Second, time.Second))
	assert.Equal(t, time.Second, RandomDelay(time.Second, time.Millisecond))
}

func TestKeystrokeDelayPositive(t *testing.T) {
	for pos := 0; pos < 50; pos++ {
		assert.Greater(t, KeystrokeDelay(pos), time.Duration(0))
	}
}

func TestShouldTypoBounds(t *testing.T) {
	assert.False(t, ShouldTypo(0))

	hits := 0
	for i := 0; i < 1000; i++ {
		if ShouldTypo(1) {
			hits++
		}
	}
	assert.Equal(t, 1000, hits)
}

func TestTypoReturnsAdjacentKey(t *testing.T) {
	neighbors := map[rune]bool{'s': true, 'q': true, 'w': true, 'z': true}
	for i := 0; i < 50; i++ {
		assert.True(t, neighbors[Typo('a')])
	}
}

func TestTypoPassesThroughUnmappedChars(t *testing.T) {
	assert.Equal(t, '7', Typo('7'))
	assert.Equal(t, ' ', Typo(' '))
}

func TestCubicBezierCurveEndpoints(t *testing.T) {
	start := Point{X: 0, Y: 0}
	end := Point{X: 100, Y: 50}
	c1 := Point{X: 20, Y: 40}
	c2 := Point{X: 80, Y: 10}

	points := CubicBezierCurve(start, end, c1, c2, 20)

	assert.Len(t, points, 20)
	assert.InDelta(t, start.X, points[0].X, 0.001)
	assert.InDelta(t, start.Y, points[0].Y, 0.001)
	assert.InDelta(t, end.X, points[len(points)-1].X, 0.001)
	assert.InDelta(t, end.Y, points[len(points)-1].Y, 0.001)
}

func TestRandomizeUserAgentLooksLikeChrome(t *testing.T) {
	for i := 0; i < 20; i++ {
		ua := RandomizeUserAgent()
		assert.Contains(t, ua, "Chrome/")
		assert.Contains(t, ua, "Mozilla/5.0")
	}
}
