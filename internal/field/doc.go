// Package field turns a raster image into a reactive dot-matrix particle field.
//
// The package has two halves:
//
//   - [Sample]: the sampling pass that scales an image onto a surface and
//     keeps mid-to-bright, non-transparent pixels as [Particle] values
//   - [Field.Step]: the per-frame update that pushes particles away from a
//     [Pointer] and springs them back toward their origin
//
// # Example
//
//	f := field.New(field.DefaultParams())
//	if err := f.Rebuild(img, 1280, 720); err != nil {
//	    return err
//	}
//	f.Step(field.At(640, 360))
//
// # Update Order
//
// Each frame applies repel, restore, friction and integrate in that order.
// The integrator is explicit with a unit timestep; it stays bounded only
// while 0 < Friction < 1 and ReturnForce is small, which [Params.Validate]
// enforces.
//
// # Thread Safety
//
// Field instances are NOT thread-safe. Step fans out over workers internally
// but callers must serialise Rebuild, Step and Particles.
package field
