package dashboard

import (
	"context"
	"time"

	"github.com/anrid/risk-dashboard/pkg/geo"
	"github.com/anrid/risk-dashboard/pkg/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Load fetches the dataset and the boundaries concurrently. Each result goes
// to the controller as soon as it arrives, so the charts may be drawn before
// the boundaries are in, or the other way round. A failed fetch is logged
// and leaves its half of the dashboard empty; it is not retried. The first
// error is returned after both fetches are done.
func (d *Dashboard) Load(ctx context.Context, f *stats.Fetcher, datasetURL, boundariesURL string) error {
	var g errgroup.Group

	g.Go(func() error {
		start := time.Now()
		ds, err := stats.LoadDataset(ctx, f, datasetURL)
		d.metrics.observeFetch("dataset", start, err)
		if err != nil {
			d.log.Error("fetch dataset", zap.String("url", datasetURL), zap.Error(err))
			return err
		}
		if err := d.Controller.SetDataset(ds); err != nil {
			d.log.Error("initialize dashboard", zap.Error(err))
			return err
		}
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		b, err := geo.LoadBoundaries(ctx, f, boundariesURL)
		d.metrics.observeFetch("boundaries", start, err)
		if err != nil {
			d.log.Error("fetch boundaries", zap.String("url", boundariesURL), zap.Error(err))
			return err
		}
		if err := d.Controller.SetBoundaries(b); err != nil {
			d.log.Error("draw map", zap.Error(err))
			return err
		}
		return nil
	})

	return g.Wait()
}
