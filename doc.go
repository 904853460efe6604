// Package skycorr estimates spatial two-point correlation inputs between
// catalogs of sky tracer objects: quasars, absorption-line sources, or
// any point set with angular position, comoving distance, redshift and a
// scalar weight.
//
// The engine finds all object pairs closer than a maximum angular
// separation using a spherical pixelization index, classifies each pair
// into a 2D histogram of parallel × transverse comoving separation,
// accumulates weighted sums over the pairs in parallel, and normalizes
// the sums into per-bin mean separations and redshift.
//
// # Quick start
//
//	scheme, _ := pixel.NewRingScheme(64)
//	cat, _ := catalog.New(scheme, objects)
//
//	corr, err := skycorr.New(cat, nil, skycorr.Config{
//	    RPMin: -200, RPMax: 200, RTMax: 200,
//	    NumRPBins: 50, NumRTBins: 50,
//	    AngMax:  0.05,
//	    ZCutMin: 0, ZCutMax: 10,
//	    Kind:    skycorr.KindAuto,
//	}, skycorr.WithWorkers(8))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := corr.Run(ctx)
//
// The result carries five parallel arrays (weight, mean rp, mean rt,
// mean z, raw pair count) of length NumRPBins·NumRTBins, plus the run
// metadata needed to persist them (see the export package).
//
// Catalogs and the pixelization index are read-only during a run and
// shared by all workers without locking; the final histogram does not
// depend on worker count or completion order.
package skycorr
