// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts upload attempts by outcome
	// (ok, invalid_type, thumbnail_failed, storage_failed).
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photohost_uploads_total",
		Help: "Photo upload attempts by outcome.",
	}, []string{"outcome"})

	// UploadBytesTotal sums the sizes of successfully stored originals.
	UploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photohost_upload_bytes_total",
		Help: "Total original bytes accepted into storage.",
	})

	// LinksIssuedTotal counts issued redirect links by artifact kind and
	// access decision.
	LinksIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photohost_links_issued_total",
		Help: "Issued artifact links by kind and access decision.",
	}, []string{"kind", "decision"})

	// AccessDeniedTotal counts refused artifact requests.
	AccessDeniedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photohost_access_denied_total",
		Help: "Artifact requests refused by the access resolver.",
	})

	// ArtifactDeletesTotal counts artifact pair deletions by outcome
	// (ok, partial).
	ArtifactDeletesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photohost_artifact_deletes_total",
		Help: "Artifact pair deletions by outcome.",
	}, []string{"outcome"})
)
