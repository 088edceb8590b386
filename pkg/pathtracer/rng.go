package pathtracer

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// NewTileRand builds a per-tile random source seeded only from the tile's
// own index, so re-rendering the same tile (e.g. after a crash, or during
// a test) reproduces identical jitter and bounce sampling regardless of
// what order tiles were dispatched in.
func NewTileRand(tileIndex int) *rand.Rand {
	return rand.New(rand.NewSource(int64(tileIndex)))
}

// RandomUnitVector draws a uniformly-ish distributed unit vector by
// rejection-free component sampling in [-1,1] followed by normalization.
func RandomUnitVector(r *rand.Rand) mgl32.Vec3 {
	v := mgl32.Vec3{
		2*r.Float32() - 1,
		2*r.Float32() - 1,
		2*r.Float32() - 1,
	}
	if v.Len() < 1e-6 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Normalize()
}

// RandomDirAroundNormal biases a random unit vector toward normal, used
// for the diffuse component of a bounce.
func RandomDirAroundNormal(r *rand.Rand, normal mgl32.Vec3) mgl32.Vec3 {
	return normal.Add(RandomUnitVector(r).Mul(0.999)).Normalize()
}

// ReflectDir mirrors dir over normal.
func ReflectDir(dir, normal mgl32.Vec3) mgl32.Vec3 {
	return dir.Sub(normal.Mul(2 * dir.Dot(normal)))
}

// BounceDir blends a mirror reflection and a random diffuse direction by
// roughness (0 = pure mirror, 1 = pure diffuse).
func BounceDir(r *rand.Rand, dir, normal mgl32.Vec3, roughness float32) mgl32.Vec3 {
	random := RandomDirAroundNormal(r, normal)
	reflect := ReflectDir(dir, normal)
	return lerpVec3(reflect, random, roughness).Normalize()
}

func lerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}
