package file

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Integrity fault labels.
const (
	faultOrphanBlob     = "orphan_blob"
	faultOrphanMetadata = "orphan_metadata"
)

var (
	integrityFaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dropshare_integrity_faults_total",
			Help: "Blob/metadata inconsistencies observed, by kind.",
		},
		[]string{"fault"},
	)

	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dropshare_uploads_total",
		Help: "Completed uploads.",
	})

	downloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dropshare_downloads_total",
		Help: "Downloads served and counted.",
	})

	linkCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dropshare_link_cache_hits_total",
		Help: "Public id lookups answered from the link cache.",
	})
	linkCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dropshare_link_cache_misses_total",
		Help: "Public id lookups that went to the metadata store.",
	})
)
