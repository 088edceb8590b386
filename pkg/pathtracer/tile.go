package pathtracer

// Tile is a rectangular sub-region of the output image dispatched as one
// worker job.
type Tile struct {
	OriginX, OriginY int
	Width, Height    int
}

// ComputeTiles partitions an imageWidth x imageHeight image into tiles of
// at most tileWidth x tileHeight, with the rightmost and bottommost tiles
// clipped to the image bounds rather than overflowing it.
func ComputeTiles(imageWidth, imageHeight, tileWidth, tileHeight int) []Tile {
	var tiles []Tile
	for y := 0; y < imageHeight; y += tileHeight {
		h := tileHeight
		if y+h > imageHeight {
			h = imageHeight - y
		}
		for x := 0; x < imageWidth; x += tileWidth {
			w := tileWidth
			if x+w > imageWidth {
				w = imageWidth - x
			}
			tiles = append(tiles, Tile{OriginX: x, OriginY: y, Width: w, Height: h})
		}
	}
	return tiles
}
