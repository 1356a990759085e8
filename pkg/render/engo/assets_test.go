package engo

import (
	"testing"
)

func TestNewAssetManager(t *testing.T) {
	am := NewAssetManager()

	if am.sprites == nil {
		t.Fatal("sprites map not initialized")
	}
	if am.Loaded() {
		t.Error("Expected no sprites before LoadAssets")
	}
	for kind := SpriteShip; kind <= SpriteStar; kind++ {
		if am.GetSprite(kind) != nil {
			t.Errorf("Expected nil sprite %d before loading", kind)
		}
	}
}

func TestLoadAssets_RequiresGL(t *testing.T) {
	t.Log("LoadAssets uploads textures and needs a live GL context; masks are tested directly")
}

func countSet(mask [][]int) int {
	n := 0
	for _, row := range mask {
		for _, v := range row {
			n += v
		}
	}
	return n
}

func TestCircleMask(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"star", starSpriteSize},
		{"particle", particleSpriteSize},
		{"body", bodySpriteSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mask := circleMask(tt.size)
			if len(mask) != tt.size || len(mask[0]) != tt.size {
				t.Fatalf("Expected %dx%d mask", tt.size, tt.size)
			}
			mid := tt.size / 2
			if mask[mid][mid] != 1 {
				t.Error("Expected the centre to be filled")
			}
			// a disc covers roughly pi/4 of its bounding square
			ratio := float64(countSet(mask)) / float64(tt.size*tt.size)
			if ratio < 0.6 || ratio > 1.0 {
				t.Errorf("Fill ratio %v out of range", ratio)
			}
		})
	}

	big := circleMask(bodySpriteSize)
	if big[0][0] != 0 || big[bodySpriteSize-1][bodySpriteSize-1] != 0 {
		t.Error("Expected corners outside the disc")
	}
}

func TestRingMask(t *testing.T) {
	mask := ringMask(bodySpriteSize)
	mid := bodySpriteSize / 2
	if mask[mid][mid] != 0 {
		t.Error("Expected a hollow centre")
	}
	if mask[mid][0] != 1 {
		t.Error("Expected the rim to be filled")
	}
	if countSet(mask) >= countSet(circleMask(bodySpriteSize)) {
		t.Error("A ring should cover less than a disc")
	}
}

func TestTriangleMask(t *testing.T) {
	mask := triangleMask(shipSpriteSize)

	if got := countSet(mask[:1]); got != 2 {
		t.Errorf("Expected a 2-pixel apex, got %d", got)
	}
	if got := countSet(mask[shipSpriteSize-1:]); got != shipSpriteSize {
		t.Errorf("Expected a full base row, got %d", got)
	}
	for y := 1; y < shipSpriteSize; y++ {
		if countSet(mask[y:y+1]) < countSet(mask[y-1:y]) {
			t.Fatalf("Row %d narrower than the row above", y)
		}
	}
}

func TestPatternImage(t *testing.T) {
	img := patternImage([][]int{
		{0, 1},
		{1, 0},
	})

	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("Unexpected bounds %v", b)
	}
	if c := img.NRGBAAt(1, 0); c.A != 255 || c.R != 255 {
		t.Errorf("Expected opaque white at (1,0), got %v", c)
	}
	if c := img.NRGBAAt(0, 0); c.A != 0 {
		t.Errorf("Expected transparency at (0,0), got %v", c)
	}

	if empty := patternImage(nil); !empty.Bounds().Empty() {
		t.Error("Expected an empty image for an empty pattern")
	}
}
