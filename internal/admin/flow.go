// Package admin implements the operator-facing record management UI and the
// save flow that uploads submitted images before a record is persisted.
package admin

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/carcosmetics/service/internal/catalog"
	"github.com/carcosmetics/service/internal/upload"
)

// Slot names one image field of a cosmetic set. The value doubles as the
// form field name and as the slot component of the object key.
type Slot string

const (
	SlotFront Slot = "image_url_front"
	SlotSide  Slot = "image_url_side"
	SlotRear  Slot = "image_url_rear"
)

// Slots returns the cosmetic set image slots in processing order.
func Slots() []Slot {
	return []Slot{SlotFront, SlotSide, SlotRear}
}

// URL returns the stored URL of slot s on c.
func (s Slot) URL(c *catalog.CosmeticSet) string {
	switch s {
	case SlotFront:
		return c.ImageURLFront
	case SlotSide:
		return c.ImageURLSide
	case SlotRear:
		return c.ImageURLRear
	}
	return ""
}

func (s Slot) setURL(c *catalog.CosmeticSet, url string) {
	switch s {
	case SlotFront:
		c.ImageURLFront = url
	case SlotSide:
		c.ImageURLSide = url
	case SlotRear:
		c.ImageURLRear = url
	}
}

// Uploader stores a file and reports the public URL, or false on failure.
type Uploader interface {
	Upload(ctx context.Context, f upload.File, key string) (string, bool)
}

// VehicleSubmission is one submitted vehicle form. ID is empty on create.
// Image is nil when no file was chosen.
type VehicleSubmission struct {
	ID    catalog.ID
	Name  string
	Class string
	Image *upload.File
}

// CosmeticSetSubmission is one submitted cosmetic set form. ID is empty on
// create. Images holds only the slots a file was chosen for.
type CosmeticSetSubmission struct {
	ID         catalog.ID
	SetName    string
	VehicleID  catalog.ID
	SetEffects string
	Parts      []string
	Images     map[Slot]*upload.File
}

// Flow saves admin submissions in two phases: Prepare* validates the record
// and uploads its images, then the record is persisted. A failed upload
// leaves the previous URL in place and does not stop the save.
type Flow struct {
	catalog  *catalog.Service
	uploader Uploader
	log      logr.Logger
}

// NewFlow creates a new Flow.
func NewFlow(svc *catalog.Service, uploader Uploader, log logr.Logger) *Flow {
	return &Flow{catalog: svc, uploader: uploader, log: log}
}

// SaveVehicle prepares and persists a vehicle submission.
func (f *Flow) SaveVehicle(ctx context.Context, sub VehicleSubmission) (*catalog.Vehicle, error) {
	v, err := f.PrepareVehicle(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := f.catalog.SaveVehicle(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// PrepareVehicle merges sub into the stored record (or a new one), validates
// it and uploads the primary image under its filename-derived key. Nothing is
// uploaded when validation fails.
func (f *Flow) PrepareVehicle(ctx context.Context, sub VehicleSubmission) (*catalog.Vehicle, error) {
	v := &catalog.Vehicle{}
	if sub.ID != "" {
		existing, err := f.catalog.GetVehicle(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("load vehicle: %w", err)
		}
		v = existing
	}
	v.Name = sub.Name
	v.Class = sub.Class

	if err := f.catalog.ValidateVehicle(ctx, v); err != nil {
		return nil, err
	}

	if sub.Image != nil {
		if url, ok := f.uploader.Upload(ctx, *sub.Image, ""); ok {
			v.ImageURL = url
		} else {
			f.log.Info("keeping previous vehicle image", "vehicle", v.Name)
		}
	}
	return v, nil
}

// SaveCosmeticSet prepares and persists a cosmetic set submission.
func (f *Flow) SaveCosmeticSet(ctx context.Context, sub CosmeticSetSubmission) (*catalog.CosmeticSet, error) {
	c, err := f.PrepareCosmeticSet(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := f.catalog.SaveCosmeticSet(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// PrepareCosmeticSet merges sub into the stored record (or a new one),
// validates it, resolves its vehicle and uploads each submitted slot under
// CosmeticSetKey(vehicle, set, slot, filename).
func (f *Flow) PrepareCosmeticSet(ctx context.Context, sub CosmeticSetSubmission) (*catalog.CosmeticSet, error) {
	c := &catalog.CosmeticSet{}
	if sub.ID != "" {
		existing, err := f.catalog.GetCosmeticSet(ctx, sub.ID)
		if err != nil {
			return nil, fmt.Errorf("load cosmetic set: %w", err)
		}
		c = existing
	}
	c.SetName = sub.SetName
	c.VehicleID = sub.VehicleID
	c.SetEffects = sub.SetEffects
	c.Parts = sub.Parts
	if c.Parts == nil {
		c.Parts = []string{}
	}

	vehicle, err := f.catalog.ValidateCosmeticSet(ctx, c)
	if err != nil {
		return nil, err
	}

	for _, slot := range Slots() {
		file := sub.Images[slot]
		if file == nil {
			continue
		}
		key := upload.CosmeticSetKey(vehicle.Name, c.SetName, string(slot), file.Filename)
		if url, ok := f.uploader.Upload(ctx, *file, key); ok {
			slot.setURL(c, url)
		} else {
			f.log.Info("keeping previous cosmetic set image", "set", c.SetName, "slot", slot)
		}
	}
	return c, nil
}
