// Package angular computes angular separations between positions on the
// sphere. The hot path operates on structure-of-arrays batches so the
// correlation kernels can process an object's full candidate list without
// per-candidate allocations.
package angular
