// Package pano is the simulation core of a 360° panorama viewer.
//
// A viewer session wraps an ordered set of equirectangular photographs
// around the camera, lets the user orbit, zoom and step between images, and
// overlays 3D-placed hotspots that can be hovered and selected. The package
// owns no window and draws nothing: every tick it produces a [Frame]
// snapshot that a renderer consumes. The [Ebitengine] renderer lives in
// pano/ebitenpano.
//
// # Quick start
//
//	tour, err := pano.LoadTour("rumtek.yaml")
//	// ...
//	loader := pano.NewLoader(fetcher, pano.DefaultLoaderConfig())
//	s, err := tour.Open(pano.DefaultConfig(), loader)
//	// ...
//	s.OnImageChanged(func(i int) { fmt.Println("now showing", i) })
//
//	// once per tick:
//	s.PointerInput(0, mouseX, mouseY, mouseDown)
//	s.Keys(heldKeys)
//	s.Update(1.0 / 60)
//	draw(s.Frame())
//
// Sessions can also be built directly with [Open] from a slice of [Image]
// and a map of [Hotspot] lists.
//
// # Modes
//
// An open session is in one of three modes. Explore leaves the camera to the
// user. Guided rotates it continuously; dragging pauses rotation until the
// pointer is released. Focus is entered by selecting a hotspot: the camera
// turns toward it with an ease-out and stops responding to drag and zoom
// until the selection is dismissed, which restores the previous mode.
//
// # Input
//
// Pointer, wheel and key input are fed in by the renderer, or queued with the
// Inject methods for headless tests. Keys are fixed: Escape closes the
// session, the arrow keys step between images, Space toggles Guided and R
// resets the view. A [ScriptRunner] replays JSON scripts of such input.
//
// # Textures
//
// A [Loader] fetches and decodes images in the background through a
// caller-supplied [Fetcher], caching them by source. A failed image shows a
// placeholder and never affects the rest of the set.
//
// [Ebitengine]: https://ebitengine.org
package pano
