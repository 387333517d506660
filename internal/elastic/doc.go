// Package elastic extracts cubic elastic constants from small-strain
// stress-strain sweeps and derives the compliance parameters used by the
// elastic-plastic decomposition.
//
// Each input file holds twelve delta columns (six strains, six pressures)
// recorded while straining the box along one axis. Files are named after
// the constants they probe: c1144 (x), c2255 (y), c3366 (z), with an
// "r" suffix for the reverse loading.
//
//	eng := elastic.New(elastic.WithThreshold(0.002))
//	res, err := eng.Analyze(paths)
//	fmt.Println(res.Params.S11, res.Params.S12, res.Params.S44)
//
// A file that cannot be read or fitted does not abort the batch; it is
// reported as a failed [Outcome] and omitted from the averages.
package elastic
