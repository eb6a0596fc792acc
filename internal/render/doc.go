// Package render paints the tracker's contact snapshot onto a surface.
//
// A Pipeline repaints the whole surface on every call: background, optional
// grid, one marker per contact, optional diagnostic text, or the idle
// message when nothing is active. Drawing goes through the Canvas interface;
// RasterCanvas implements it on an *image.RGBA using golang.org/x/image.
package render
