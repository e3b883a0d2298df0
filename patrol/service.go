// Package patrol records verified checkpoint visits. Submission is the only
// write path for patrol events: validation, checkpoint resolution and the
// geofence check all run before anything is persisted, and a created event
// is never updated afterwards.
package patrol

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"patrolwatch/blob"
	"patrolwatch/db"
	"patrolwatch/geo"
	"patrolwatch/models"
)

var (
	// ErrValidation marks a malformed or incomplete submission.
	ErrValidation = errors.New("invalid submission")
	// ErrGeofenceViolation marks a submission from outside the checkpoint's
	// geofence. The caller resolves it by physically relocating, never by
	// retrying in place.
	ErrGeofenceViolation = errors.New("guard not near checkpoint")
)

var validate = validator.New()

// SubmitRequest is the payload a guard sends for one check-in. Coordinates
// are pointers so a missing field is distinguishable from 0°.
type SubmitRequest struct {
	CheckpointID string                     `json:"checkpoint_id" validate:"required"`
	Latitude     *float64                   `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude    *float64                   `json:"longitude" validate:"required,min=-180,max=180"`
	Responses    []models.ChecklistResponse `json:"responses"`
	PhotoBase64  string                     `json:"photo_base64,omitempty"`
}

// Service validates and records check-in events.
type Service struct {
	store           db.Store
	photos          blob.Store
	thresholdMeters float64
	now             func() time.Time
}

// NewService creates a submission service. A non-positive threshold falls
// back to the default 50 m geofence.
func NewService(store db.Store, photos blob.Store, thresholdMeters float64) *Service {
	if thresholdMeters <= 0 {
		thresholdMeters = geo.DefaultThresholdMeters
	}
	return &Service{
		store:           store,
		photos:          photos,
		thresholdMeters: thresholdMeters,
		now:             time.Now,
	}
}

// Submit records one check-in for the given guard. Exactly one event is
// created on success; on any error nothing is persisted to the event store.
// The timestamp is assigned here, never taken from the caller. There is no
// cap on submissions per day: the daily quota is a reporting metric, not a
// gate, so a sixth same-day check-in is accepted.
func (s *Service) Submit(ctx context.Context, guardID string, req SubmitRequest) (*models.PatrolEvent, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.Responses == nil {
		return nil, fmt.Errorf("%w: responses must be a list", ErrValidation)
	}
	for i, response := range req.Responses {
		if response.Item == "" {
			return nil, fmt.Errorf("%w: response %d has no item label", ErrValidation, i)
		}
		switch response.Value.(type) {
		case bool, string:
		default:
			return nil, fmt.Errorf("%w: response %q must be a boolean or text", ErrValidation, response.Item)
		}
	}

	var photo []byte
	if req.PhotoBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.PhotoBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: photo is not valid base64", ErrValidation)
		}
		photo = decoded
	}

	checkpoint, err := s.store.GetCheckpoint(ctx, req.CheckpointID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("checkpoint %s: %w", req.CheckpointID, db.ErrNotFound)
		}
		return nil, err
	}

	distance := geo.Distance(*req.Latitude, *req.Longitude, checkpoint.Latitude, checkpoint.Longitude)
	if !geo.Within(distance, s.thresholdMeters) {
		return nil, fmt.Errorf("%w: %.1f m from %s", ErrGeofenceViolation, distance, checkpoint.Name)
	}

	// The photo blob is written before the event so the event never points
	// at a missing blob; a failed event create leaves only a harmless
	// content-addressed object behind.
	photoRef := ""
	if photo != nil {
		photoRef, err = s.photos.Put(ctx, photo)
		if err != nil {
			return nil, fmt.Errorf("failed to store photo: %w", err)
		}
	}

	event := &models.PatrolEvent{
		PatrolID:     uuid.NewString(),
		GuardID:      guardID,
		CheckpointID: checkpoint.CheckpointID,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		Responses:    req.Responses,
		PhotoRef:     photoRef,
		Timestamp:    s.now().UTC(),
	}

	if err := s.store.CreatePatrol(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

// ListOwn returns the guard's own events in the window, most recent first.
func (s *Service) ListOwn(ctx context.Context, guardID string, start, end time.Time) ([]models.PatrolEvent, error) {
	events, err := s.store.ListPatrolsByGuardBetween(ctx, guardID, start, end)
	if err != nil {
		return nil, err
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.After(events[j].Timestamp)
		}
		return events[i].PatrolID < events[j].PatrolID
	})

	return events, nil
}
