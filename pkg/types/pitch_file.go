package types

import "time"

// PitchFile is one uploaded asset tied to a pitch. A record is created in its
// initial state and moved exactly once into either the quarantined or the
// watermarked terminal state by the intake pipeline.
type PitchFile struct {
	ID              string    `db:"id" json:"id"`
	PitchID         string    `db:"pitch_id" json:"pitch_id"`
	StoragePath     string    `db:"storage_path" json:"storage_path"`
	FileName        string    `db:"file_name" json:"file_name"`
	ContentType     string    `db:"content_type" json:"content_type"`
	SizeBytes       int64     `db:"size_bytes" json:"size_bytes"`
	Watermarked     bool      `db:"watermarked" json:"watermarked"`
	WatermarkedPath *string   `db:"watermarked_path" json:"watermarked_path"`
	Quarantined     bool      `db:"quarantined" json:"quarantined"`
	HasContactInfo  bool      `db:"has_contact_info" json:"has_contact_info"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type PitchFileState string

const (
	PitchFileStateCreated     PitchFileState = "CREATED"
	PitchFileStateQuarantined PitchFileState = "QUARANTINED"
	PitchFileStateWatermarked PitchFileState = "WATERMARKED"
)

func (f *PitchFile) State() PitchFileState {
	switch {
	case f.Quarantined:
		return PitchFileStateQuarantined
	case f.Watermarked:
		return PitchFileStateWatermarked
	default:
		return PitchFileStateCreated
	}
}

func (f *PitchFile) Terminal() bool {
	return f.Watermarked || f.Quarantined
}

const (
	ReportReasonContactInfo = "contact_info_detected"

	ReportStatusOpen = "open"
)

// Report flags a pitch for human review.
type Report struct {
	ID        string    `db:"id"`
	PitchID   string    `db:"pitch_id"`
	FileID    *string   `db:"file_id"`
	Reason    string    `db:"reason"`
	Details   *string   `db:"details"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}
