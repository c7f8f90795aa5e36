package photo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lumapix/service/internal/access"
	"github.com/lumapix/service/internal/artifact"
	"github.com/lumapix/service/internal/metrics"
)

// UploadMeta carries the caller-supplied form fields for a new photo.
type UploadMeta struct {
	Title       string
	Description string
	Location    string
	TakenOn     string
	IsPublic    bool
}

// Service contains the business logic for photo management and access gating.
type Service struct {
	repo         Repository
	coordinator  *artifact.Coordinator
	issuer       *access.Issuer
	sharedSecret string
}

// NewService creates a new photo Service.
func NewService(repo Repository, coordinator *artifact.Coordinator, issuer *access.Issuer, sharedSecret string) *Service {
	return &Service{
		repo:         repo,
		coordinator:  coordinator,
		issuer:       issuer,
		sharedSecret: sharedSecret,
	}
}

// Upload runs the artifact pipeline and persists the resulting record.
// The photo record is only created after both artifacts are durably stored;
// if the metadata write fails, the freshly stored artifacts are removed so
// neither side is left dangling.
func (s *Service) Upload(ctx context.Context, ownerID string, data []byte, filename string, meta UploadMeta) (*Photo, error) {
	desc, err := s.coordinator.Upload(ctx, data, filename)
	if err != nil {
		switch {
		case errors.Is(err, artifact.ErrInvalidFileType):
			metrics.UploadsTotal.WithLabelValues("invalid_type").Inc()
		case errors.Is(err, artifact.ErrThumbnailGeneration):
			metrics.UploadsTotal.WithLabelValues("thumbnail_failed").Inc()
		default:
			metrics.UploadsTotal.WithLabelValues("storage_failed").Inc()
		}
		return nil, err
	}

	if meta.Title == "" {
		meta.Title = "Untitled photo"
	}
	if meta.TakenOn == "" {
		meta.TakenOn = time.Now().Format("2006-01-02")
	}

	record := &Photo{
		OwnerID:      ownerID,
		Title:        meta.Title,
		Description:  meta.Description,
		Location:     meta.Location,
		TakenOn:      meta.TakenOn,
		IsPublic:     meta.IsPublic,
		OriginalKey:  desc.OriginalKey,
		ThumbnailKey: desc.ThumbnailKey,
		ByteSize:     desc.ByteSize,
		FileName:     filename,
		MimeType:     desc.MimeType,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		if delErr := s.coordinator.Delete(ctx, desc.OriginalKey, desc.ThumbnailKey); delErr != nil {
			log.Printf("photo: failed to clean up artifacts after metadata write failure: %v", delErr)
		}
		metrics.UploadsTotal.WithLabelValues("storage_failed").Inc()
		return nil, fmt.Errorf("persist photo record: %w", err)
	}

	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	metrics.UploadBytesTotal.Add(float64(desc.ByteSize))
	return created, nil
}

// Get returns a photo's metadata when the caller may see it: the owner sees
// their own photos, everyone sees public ones. Anything else reads as not
// found, so existence of private photos is never confirmed to outsiders.
func (s *Service) Get(ctx context.Context, id, callerID string) (*Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPublic && (callerID == "" || callerID != p.OwnerID) {
		return nil, ErrNotFound
	}
	return p, nil
}

// GetPublic returns a photo only if it is public.
func (s *Service) GetPublic(ctx context.Context, id string) (*Photo, error) {
	return s.Get(ctx, id, "")
}

// ArtifactLink resolves access for one artifact of one photo and, when
// granted, issues the redirect URL. The decision is recomputed on every call
// against the record's current visibility and the request's current
// credentials.
func (s *Service) ArtifactLink(ctx context.Context, id string, kind access.ArtifactKind, callerID, sharedSecret string) (*access.SignedLink, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	decision := access.Resolve(p.IsPublic, p.OwnerID, callerID, sharedSecret, s.sharedSecret)
	if !decision.Allowed() {
		metrics.AccessDeniedTotal.Inc()
		return nil, access.ErrDenied
	}

	key := p.OriginalKey
	kindLabel := "original"
	if kind == access.Thumbnail {
		key = p.ThumbnailKey
		kindLabel = "thumbnail"
	}

	link, err := s.issuer.IssueLink(ctx, decision, key, p.IsPublic, kind)
	if err != nil {
		return nil, err
	}
	metrics.LinksIssuedTotal.WithLabelValues(kindLabel, decision.String()).Inc()
	return link, nil
}

// ListOwn returns one page of the caller's photos.
func (s *Service) ListOwn(ctx context.Context, ownerID string, params ListParams) (*Page, error) {
	return s.repo.ListByOwner(ctx, ownerID, params)
}

// ListPublic returns one page of public photos.
func (s *Service) ListPublic(ctx context.Context, params ListParams) (*Page, error) {
	return s.repo.ListPublic(ctx, params)
}

// UpdateParams are the mutable metadata fields; nil means "leave unchanged".
type UpdateParams struct {
	Title       *string
	Description *string
	Location    *string
	TakenOn     *string
	IsPublic    *bool
}

// Update applies the given changes to the caller's own photo.
func (s *Service) Update(ctx context.Context, id, callerID string, params UpdateParams) (*Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != callerID {
		return nil, ErrNotFound
	}

	if params.Title != nil {
		p.Title = *params.Title
	}
	if params.Description != nil {
		p.Description = *params.Description
	}
	if params.Location != nil {
		p.Location = *params.Location
	}
	if params.TakenOn != nil {
		p.TakenOn = *params.TakenOn
	}
	if params.IsPublic != nil {
		p.IsPublic = *params.IsPublic
	}

	return s.repo.Update(ctx, p)
}

// Delete removes the caller's own photo. Artifact deletion is best effort:
// a partial failure is logged and counted but never blocks removing the
// metadata record.
func (s *Service) Delete(ctx context.Context, id, callerID string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.OwnerID != callerID {
		return ErrNotFound
	}

	if err := s.coordinator.Delete(ctx, p.OriginalKey, p.ThumbnailKey); err != nil {
		var partial *artifact.PartialFailure
		if errors.As(err, &partial) {
			log.Printf("photo: partial artifact deletion for %s: %v", id, partial)
		} else {
			log.Printf("photo: artifact deletion for %s: %v", id, err)
		}
		metrics.ArtifactDeletesTotal.WithLabelValues("partial").Inc()
	} else {
		metrics.ArtifactDeletesTotal.WithLabelValues("ok").Inc()
	}

	return s.repo.Delete(ctx, id)
}

// Stats aggregates the caller's library for the dashboard.
func (s *Service) Stats(ctx context.Context, ownerID string) (*OwnerStats, error) {
	return s.repo.Stats(ctx, ownerID)
}

// IsNotFound returns true when the error indicates a photo was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
