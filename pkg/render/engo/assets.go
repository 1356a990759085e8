// pkg/render/engo/assets.go
package engo

import (
	"image"
	"image/color"

	"github.com/EngoEngine/engo/common"
)

// SpriteKind identifies a generated sprite
type SpriteKind int

const (
	SpriteShip SpriteKind = iota
	SpritePlanet
	SpriteRing
	SpriteAsteroid
	SpriteNebula
	SpriteParticle
	SpriteStar
)

// sprite mask sizes in pixels
const (
	shipSpriteSize     = 16
	bodySpriteSize     = 32
	particleSpriteSize = 4
	starSpriteSize     = 2
)

// AssetManager generates and holds the scene's sprites. Every sprite is a
// white mask tinted per entity through RenderComponent.Color.
type AssetManager struct {
	sprites map[SpriteKind]common.Drawable
}

// NewAssetManager creates a new asset manager
func NewAssetManager() *AssetManager {
	return &AssetManager{
		sprites: make(map[SpriteKind]common.Drawable),
	}
}

// LoadAssets builds every sprite. It needs a live GL context.
func (am *AssetManager) LoadAssets() error {
	masks := map[SpriteKind][][]int{
		SpriteShip:     triangleMask(shipSpriteSize),
		SpritePlanet:   circleMask(bodySpriteSize),
		SpriteRing:     ringMask(bodySpriteSize),
		SpriteAsteroid: circleMask(bodySpriteSize / 2),
		SpriteNebula:   circleMask(bodySpriteSize),
		SpriteParticle: circleMask(particleSpriteSize),
		SpriteStar:     circleMask(starSpriteSize),
	}
	for kind, mask := range masks {
		am.sprites[kind] = am.convertToEngoTexture(patternImage(mask))
	}
	return nil
}

// GetSprite returns the sprite for kind, or nil before LoadAssets
func (am *AssetManager) GetSprite(kind SpriteKind) common.Drawable {
	return am.sprites[kind]
}

// Loaded reports whether the sprites have been built
func (am *AssetManager) Loaded() bool {
	return len(am.sprites) > 0
}

// convertToEngoTexture uploads an image as an Engo texture.
func (am *AssetManager) convertToEngoTexture(img *image.NRGBA) common.Drawable {
	texture := common.NewImageObject(img)
	return common.NewTextureSingle(texture)
}

// patternImage draws a 0/1 mask as an opaque white image on transparency
func patternImage(pattern [][]int) *image.NRGBA {
	height := len(pattern)
	width := 0
	if height > 0 {
		width = len(pattern[0])
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y, row := range pattern {
		for x, pixel := range row {
			if pixel == 1 && x < width {
				img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
			}
		}
	}
	return img
}

// circleMask is a filled disc of the given diameter
func circleMask(size int) [][]int {
	mask := newMask(size)
	r := float64(size) / 2
	for y := range mask {
		for x := range mask[y] {
			dx := float64(x) + 0.5 - r
			dy := float64(y) + 0.5 - r
			if dx*dx+dy*dy <= r*r {
				mask[y][x] = 1
			}
		}
	}
	return mask
}

// ringMask is the outer band of a disc
func ringMask(size int) [][]int {
	mask := newMask(size)
	outer := float64(size) / 2
	inner := outer * 0.75
	for y := range mask {
		for x := range mask[y] {
			dx := float64(x) + 0.5 - outer
			dy := float64(y) + 0.5 - outer
			d := dx*dx + dy*dy
			if d <= outer*outer && d >= inner*inner {
				mask[y][x] = 1
			}
		}
	}
	return mask
}

// triangleMask is an isosceles triangle with its apex on the top row
func triangleMask(size int) [][]int {
	mask := newMask(size)
	mid := float64(size) / 2
	for y := range mask {
		half := mid * float64(y+1) / float64(size)
		for x := range mask[y] {
			if c := float64(x) + 0.5; c >= mid-half && c <= mid+half {
				mask[y][x] = 1
			}
		}
	}
	return mask
}

func newMask(size int) [][]int {
	mask := make([][]int, size)
	for i := range mask {
		mask[i] = make([]int, size)
	}
	return mask
}
