package types

import "time"

// UnlockGrant records that a viewer accepted the NDA for one pitch. Grants
// are insert-only.
type UnlockGrant struct {
	ID                 string    `db:"id" json:"id"`
	ViewerID           string    `db:"viewer_id" json:"viewerId"`
	PitchID            string    `db:"pitch_id" json:"pitchId"`
	SignatureText      string    `db:"signature_text" json:"signatureText"`
	SignatureImagePath string    `db:"signature_image_path" json:"signatureImagePath"`
	GrantedAt          time.Time `db:"granted_at" json:"grantedAt"`
}
