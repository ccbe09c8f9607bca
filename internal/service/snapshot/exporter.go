package snapshot

import (
	"context"

	"github.com/InjectiveLabs/metrics"
	log "github.com/InjectiveLabs/suplog"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// Exporter fetches one feeds snapshot and persists it as CSV rows.
type Exporter struct {
	fetcher FeedsFetcher
	store   *Store

	logger  log.Logger
	svcTags metrics.Tags
}

func NewExporter(fetcher FeedsFetcher, store *Store) *Exporter {
	return &Exporter{
		fetcher: fetcher,
		store:   store,
		logger: log.WithFields(log.Fields{
			"svc": "snapshot",
		}),
		svcTags: metrics.Tags{
			"svc": "snapshot",
		},
	}
}

// Fetch pulls the snapshot and converts it into rows without touching the file.
func (e *Exporter) Fetch(ctx context.Context) (rows []FeedRow, err error) {
	defer metrics.ReportFuncCallAndTimingWithErr(e.svcTags)(&err)

	snap, err := e.fetcher.FetchAllFeeds(ctx)
	if err != nil {
		return nil, Classify(KindNetwork, errors.Wrap(err, "failed to fetch feeds"))
	}

	return BuildRows(snap)
}

// Run performs a full export: one fetch followed by one write.
func (e *Exporter) Run(ctx context.Context) (res *Result, err error) {
	defer metrics.ReportFuncCallAndTimingWithErr(e.svcTags)(&err)

	runLogger := e.logger.WithField("run_id", uuid.NewV4().String())

	rows, err := e.Fetch(ctx)
	if err != nil {
		runLogger.WithError(err).Debugln("snapshot fetch aborted")
		return nil, err
	}

	runLogger.WithFields(log.Fields{
		"rows": len(rows),
		"path": e.store.Path(),
	}).Debugln("fetched feeds snapshot")

	created, err := e.store.Write(rows)
	if err != nil {
		return nil, err
	}

	res = &Result{
		Path:    e.store.Path(),
		Created: created,
		Rows:    len(rows),
	}

	runLogger.WithFields(log.Fields{
		"rows":    res.Rows,
		"created": res.Created,
	}).Infoln("feeds snapshot exported")

	return res, nil
}
