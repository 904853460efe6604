// Package pixel provides the spherical pixelization used to localize
// neighbor search. A Scheme partitions the sky into cells so that the
// correlation engine only has to examine objects in cells that can
// possibly fall within the angular search radius of a reference object.
package pixel
