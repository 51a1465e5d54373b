package access

import (
	"context"
	"errors"
	"fmt"
	"time"

	"venturelink/pkg/types"
)

type ResolutionStatus string

const (
	// Locked means no grant, or the pitch has a quarantined file.
	Locked ResolutionStatus = "locked"
	// Pending means a grant exists but nothing has been published yet.
	Pending   ResolutionStatus = "pending"
	Available ResolutionStatus = "available"
)

type AssetRef struct {
	FileID      string    `json:"fileId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Resolution struct {
	Status ResolutionStatus `json:"status"`
	Assets []AssetRef       `json:"assets,omitempty"`
}

// Locked reports whether the viewer is denied the assets for now.
func (r Resolution) Locked() bool {
	return r.Status != Available
}

// ResolveProtectedAsset returns signed references to the pitch's published
// files when the viewer holds a grant and none of the files was quarantined.
func (g *Gate) ResolveProtectedAsset(ctx context.Context, viewerID, pitchID string) (Resolution, error) {
	_, err := g.grants.Grant(ctx, viewerID, pitchID)
	if errors.Is(err, types.ErrGrantNotFound) {
		return Resolution{Status: Locked}, nil
	}
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to check grant: %w", err)
	}

	files, err := g.files.PitchFilesByPitch(ctx, pitchID)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to list pitch files: %w", err)
	}

	var published []*types.PitchFile
	for _, f := range files {
		if f.Quarantined {
			return Resolution{Status: Locked}, nil
		}
		if f.Watermarked && f.WatermarkedPath != nil {
			published = append(published, f)
		}
	}

	if len(published) == 0 {
		return Resolution{Status: Pending}, nil
	}

	expires := time.Now().Add(g.urlTTL)
	assets := make([]AssetRef, 0, len(published))
	for _, f := range published {
		url, err := g.published.SignedDownloadURL(ctx, *f.WatermarkedPath, g.urlTTL)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to sign %s: %w", *f.WatermarkedPath, err)
		}
		assets = append(assets, AssetRef{
			FileID:      f.ID,
			FileName:    f.FileName,
			ContentType: f.ContentType,
			Path:        *f.WatermarkedPath,
			URL:         url,
			ExpiresAt:   expires,
		})
	}

	return Resolution{Status: Available, Assets: assets}, nil
}
