// Package synthtext synthesizes degraded text images for OCR training.
//
// # Overview
//
// synthtext takes a clean rendered-text image (bright strokes on a dark
// field) and produces the kind of picture a camera would have taken of
// it: occluded by a stray box, viewed at an angle, blurred, embossed or
// sharpened, and finally merged seamlessly into a real photographic
// background. Every random decision is driven by an explicit generator,
// so a fixed seed reproduces the exact same output.
//
// # Quick Start
//
//	import (
//	    "math/rand/v2"
//
//	    "github.com/synthtext/synthtext"
//	)
//
//	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
//
//	cfg := synthtext.DefaultConfig()
//	effector, _ := synthtext.NewEffector(cfg.EffectConfig())
//	blender, _ := synthtext.NewBlender(cfg.BlendConfig())
//
//	pool, _ := synthtext.LoadBackgrounds(rng, "./background", 64, 1000)
//
//	text, _ := synthtext.LoadGray("rendered.png")
//	degraded, _ := effector.Apply(rng, text)
//	final, _ := blender.Blend(rng, degraded, pool.Random(rng))
//	_ = synthtext.SavePNG("out.png", final)
//
// # Pipeline
//
// The two stages compose but are independently usable:
//   - Effector: occlusion box, perspective warp, gaussian blur, and an
//     optional emboss/sharpen pass, each behind a probability gate.
//   - Blender: background tone jitter, random pad, then seamless
//     gradient-domain cloning with maximum gradient mixing.
//
// # Architecture
//
// The library is organized into:
//   - Public API: Effector, Blender, Pool, Config, RandomVar
//   - projective: pinhole-camera model and homography solving
//   - poisson: the gradient-domain editing solver
//   - internal/raster: grayscale resampling and projective warping
//
// # Determinism
//
// No package-level random state exists. Functions that need randomness
// take a *rand.Rand as their first argument; sampling order is fixed
// and documented, so two runs with equal seeds and inputs produce
// byte-identical images.
package synthtext

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
