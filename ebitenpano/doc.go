// Package ebitenpano runs a [pano.Session] inside an Ebitengine window.
//
// The root pano package has no rendering dependency. This package owns the
// Ebitengine side: it polls mouse, touch, wheel and keyboard into the
// session, ticks it once per Update and draws each [pano.Frame]: the
// textured sphere, hotspot markers, captions and the detail panel of the
// selected hotspot.
//
// Usage:
//
//	session, err := tour.Open(cfg, loader)
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = ebitenpano.Run(session, ebitenpano.RunConfig{Title: "Monastery"})
//
// Closing the session (Escape, or Session.Close from a callback) releases
// the GPU images and ends the game loop.
package ebitenpano
