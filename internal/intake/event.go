package intake

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"venturelink/pkg/types"
)

// maxEventBytes caps the size of a delivered event body.
const maxEventBytes = 1 << 20

// Event is a row-change notification for the pitch file table.
type Event struct {
	Type   string       `json:"type"`
	Table  string       `json:"table"`
	Record *EventRecord `json:"record"`
}

// EventRecord carries the columns the pipeline reads. Timestamps are left
// out since delivery formats vary.
type EventRecord struct {
	ID              string  `json:"id"`
	PitchID         string  `json:"pitch_id"`
	StoragePath     string  `json:"storage_path"`
	FileName        string  `json:"file_name"`
	ContentType     string  `json:"content_type"`
	SizeBytes       int64   `json:"size_bytes"`
	Watermarked     bool    `json:"watermarked"`
	WatermarkedPath *string `json:"watermarked_path"`
	Quarantined     bool    `json:"quarantined"`
	HasContactInfo  bool    `json:"has_contact_info"`
}

// EventError reports a malformed delivery.
type EventError struct {
	Reason string
}

func (e *EventError) Error() string {
	return "invalid intake event: " + e.Reason
}

// ParseEvent decodes and validates a delivery body.
func ParseEvent(r io.Reader) (*Event, error) {
	var event = new(Event)
	err := json.NewDecoder(io.LimitReader(r, maxEventBytes)).Decode(event)
	if err != nil {
		return nil, &EventError{Reason: fmt.Sprintf("malformed json: %v", err)}
	}

	if event.Record == nil {
		return nil, &EventError{Reason: "record is required"}
	}

	var missing []string
	if event.Record.ID == "" {
		missing = append(missing, "record.id")
	}
	if event.Record.PitchID == "" {
		missing = append(missing, "record.pitch_id")
	}
	if event.Record.StoragePath == "" {
		missing = append(missing, "record.storage_path")
	}
	if len(missing) > 0 {
		return nil, &EventError{Reason: "missing " + strings.Join(missing, ", ")}
	}

	return event, nil
}

// NewEvent builds the insert event for a freshly registered file.
func NewEvent(file *types.PitchFile) *Event {
	return &Event{
		Type:  "INSERT",
		Table: "pitch_files",
		Record: &EventRecord{
			ID:              file.ID,
			PitchID:         file.PitchID,
			StoragePath:     file.StoragePath,
			FileName:        file.FileName,
			ContentType:     file.ContentType,
			SizeBytes:       file.SizeBytes,
			Watermarked:     file.Watermarked,
			WatermarkedPath: file.WatermarkedPath,
			Quarantined:     file.Quarantined,
			HasContactInfo:  file.HasContactInfo,
		},
	}
}

func (r *EventRecord) PitchFile() *types.PitchFile {
	return &types.PitchFile{
		ID:              r.ID,
		PitchID:         r.PitchID,
		StoragePath:     r.StoragePath,
		FileName:        r.FileName,
		ContentType:     r.ContentType,
		SizeBytes:       r.SizeBytes,
		Watermarked:     r.Watermarked,
		WatermarkedPath: r.WatermarkedPath,
		Quarantined:     r.Quarantined,
		HasContactInfo:  r.HasContactInfo,
	}
}
