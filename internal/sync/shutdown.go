package syncadapter

import (
	"golang.org/x/sync/errgroup"

	"github.com/dana-lang/dana/internal/values"
)

// CleanupFunc runs one resource's _cleanup_resource.
type CleanupFunc func(r *values.Resource) error

// ShutdownAll runs cleanup for every resource in resources (spec §4.5.4
// trigger 4: program termination), fanned out with errgroup so one slow
// or wedged resource's cleanup does not delay the rest. Goroutines are
// started newest acquisition first, but the cleanups run concurrently, so
// the order in which they run and finish is not defined. Every cleanup is
// started before anything waits on a result, so a failure in one does not
// skip the others; the first error is returned.
func ShutdownAll(resources []*values.Resource, cleanup CleanupFunc) error {
	var eg errgroup.Group
	for i := len(resources) - 1; i >= 0; i-- {
		r := resources[i]
		eg.Go(func() error {
			return cleanup(r)
		})
	}
	return eg.Wait()
}
