// Package pinning uploads an item image and its metadata document to IPFS.
//
// An upload is a two-step saga: the image is pinned first, then a metadata
// document pointing at the image's gateway URL. A marker row in the pins
// table records how far each upload got, so an upload whose metadata step
// failed can be finished later without pinning the image again.
package pinning

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/erazemk/mintmarket/internal/apperr"
	"github.com/erazemk/mintmarket/internal/imaging"
	"github.com/erazemk/mintmarket/internal/metrics"
	"github.com/erazemk/mintmarket/internal/model"
	"github.com/erazemk/mintmarket/internal/pinata"
	"github.com/erazemk/mintmarket/internal/store"
)

// Provider pins content to IPFS. *pinata.Client implements it.
type Provider interface {
	PinFile(ctx context.Context, filename, contentType string, data []byte) (*pinata.PinResponse, error)
	PinJSON(ctx context.Context, content any) (*pinata.PinResponse, error)
}

// Image is an uploaded image file.
type Image struct {
	Filename string
	Data     []byte
}

// Descriptor is the caller-supplied part of the metadata document.
type Descriptor struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	ExternalURL string            `json:"external_url"`
	Attributes  []model.Attribute `json:"attributes"`
}

// Service runs pinning workflows.
type Service struct {
	DB           *sql.DB
	Provider     Provider
	GatewayURL   string
	MaxImageSize int64
	Metrics      *metrics.Metrics
}

// Upload validates img, pins it, then pins the metadata document built from
// d and the image CID. Validation happens before any network call.
//
// If the metadata step fails the error is returned and the marker stays at
// image_pinned; Reconcile finishes it.
func (s *Service) Upload(ctx context.Context, img Image, d Descriptor) (*model.PinnedMetadata, error) {
	if err := imaging.ValidateExtension(img.Filename); err != nil {
		return nil, err
	}
	if int64(len(img.Data)) > s.MaxImageSize {
		return nil, apperr.Business(apperr.FileSizeExceeded)
	}
	contentType, err := imaging.Sniff(img.Filename, img.Data)
	if err != nil {
		return nil, err
	}

	attrs := d.Attributes
	if attrs == nil {
		attrs = []model.Attribute{}
	}
	pin := &model.Pin{
		ID:       uuid.NewString(),
		Filename: imaging.BaseName(img.Filename) + "-" + uuid.NewString(),
		Metadata: model.Metadata{
			Name:        d.Name,
			Description: d.Description,
			ExternalURL: d.ExternalURL,
			Attributes:  attrs,
		},
	}
	if err := store.CreatePin(ctx, s.DB, pin); err != nil {
		return nil, err
	}

	resp, err := s.Provider.PinFile(ctx, pin.Filename, contentType, img.Data)
	s.Metrics.PinStep("image", err)
	if err != nil {
		slog.Error("pinning image failed", "pin", pin.ID, "error", err)
		return nil, fmt.Errorf("pinning image: %w", err)
	}
	if err := store.MarkPinImagePinned(ctx, s.DB, pin.ID, resp.IpfsHash); err != nil {
		return nil, err
	}
	pin.ImageCID = resp.IpfsHash
	slog.Info("image pinned", "pin", pin.ID, "cid", resp.IpfsHash, "size", resp.PinSize)

	return s.pinMetadata(ctx, pin)
}

// Reconcile finishes an upload whose metadata step did not complete. A
// completed upload returns its stored result; an upload whose image was
// never confirmed cannot be recovered.
func (s *Service) Reconcile(ctx context.Context, id string) (*model.PinnedMetadata, error) {
	pin, err := store.GetPin(ctx, s.DB, id)
	if err != nil {
		return nil, err
	}
	if pin == nil {
		return nil, apperr.NotFound("pin", "id", id)
	}

	switch pin.Status {
	case model.PinComplete:
		return s.result(pin, pin.MetadataCID), nil
	case model.PinImagePinned:
		slog.Info("reconciling pin", "pin", pin.ID, "image", pin.ImageCID)
		return s.pinMetadata(ctx, pin)
	default:
		return nil, apperr.Business(apperr.PinNotRecoverable)
	}
}

// PendingPins returns uploads that have not completed, oldest first.
func (s *Service) PendingPins(ctx context.Context) ([]model.Pin, error) {
	pins, err := store.ListUnfinishedPins(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if pins == nil {
		pins = []model.Pin{}
	}
	return pins, nil
}

// pinMetadata pins the metadata document for a marker at image_pinned and
// completes the marker.
func (s *Service) pinMetadata(ctx context.Context, pin *model.Pin) (*model.PinnedMetadata, error) {
	pin.Metadata.Image = s.gatewayURL(pin.ImageCID)

	resp, err := s.Provider.PinJSON(ctx, pin.Metadata)
	s.Metrics.PinStep("metadata", err)
	if err != nil {
		slog.Error("pinning metadata failed", "pin", pin.ID, "image", pin.ImageCID, "error", err)
		return nil, fmt.Errorf("pinning metadata: %w", err)
	}

	if err := store.CompletePin(ctx, s.DB, pin.ID, resp.IpfsHash, pin.Metadata); err != nil {
		return nil, err
	}
	slog.Info("metadata pinned", "pin", pin.ID, "cid", resp.IpfsHash)

	return s.result(pin, resp.IpfsHash), nil
}

func (s *Service) result(pin *model.Pin, metadataCID string) *model.PinnedMetadata {
	return &model.PinnedMetadata{
		PinID:    pin.ID,
		CID:      metadataCID,
		URL:      s.gatewayURL(metadataCID),
		ImageCID: pin.ImageCID,
		Metadata: pin.Metadata,
	}
}

func (s *Service) gatewayURL(cid string) string {
	return strings.TrimRight(s.GatewayURL, "/") + "/" + cid
}
