// Package access gates protected pitch materials behind a signed
// non-disclosure agreement. A viewer's consent is stored as an insert-only
// grant and every later asset request is authorized against it.
package access

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"venturelink/internal/storage"
	"venturelink/pkg/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// maxSignatureBytes bounds the drawn signature image.
const maxSignatureBytes = 2 << 20

type GrantStore interface {
	Grant(ctx context.Context, viewerID, pitchID string) (*types.UnlockGrant, error)
	CreateGrant(ctx context.Context, grant *types.UnlockGrant) (*types.UnlockGrant, error)
}

type FileLister interface {
	PitchFilesByPitch(ctx context.Context, pitchID string) ([]*types.PitchFile, error)
}

type Gate struct {
	logger    *logrus.Logger
	grants    GrantStore
	files     FileLister
	published storage.SigningBucket
	clauses   []Clause
	urlTTL    time.Duration
}

func NewGate(logger *logrus.Logger, grants GrantStore, files FileLister, published storage.SigningBucket, urlTTL time.Duration) *Gate {
	return &Gate{
		logger:    logger,
		grants:    grants,
		files:     files,
		published: published,
		clauses:   DefaultClauses(),
		urlTTL:    urlTTL,
	}
}

// CheckGrantStatus reports whether the viewer has already signed for the pitch.
func (g *Gate) CheckGrantStatus(ctx context.Context, viewerID, pitchID string) (bool, error) {
	_, err := g.grants.Grant(ctx, viewerID, pitchID)
	if errors.Is(err, types.ErrGrantNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check grant: %w", err)
	}
	return true, nil
}

func (g *Gate) PresentAgreement(pitch *types.Pitch, entrepreneurName string) AgreementView {
	return render(g.clauses, pitch, entrepreneurName)
}

// Requirement names one precondition of consent.
type Requirement string

const (
	RequirementClauses        Requirement = "clauses"
	RequirementSignatureText  Requirement = "signature_text"
	RequirementSignatureImage Requirement = "signature_image"
)

// ValidationError lists every unmet requirement of a consent submission.
type ValidationError struct {
	Missing []Requirement
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = string(m)
	}
	return "consent incomplete: missing " + strings.Join(names, ", ")
}

func (e *ValidationError) Has(r Requirement) bool {
	for _, m := range e.Missing {
		if m == r {
			return true
		}
	}
	return false
}

type ConsentSubmission struct {
	ViewerID        string
	PitchID         string
	AcceptedClauses []string
	SignatureText   string
	// SignatureImage must sniff as an image; any type the client claims for
	// it is ignored.
	SignatureImage []byte
}

func (g *Gate) allClausesChecked(accepted []string) bool {
	set := make(map[string]bool, len(accepted))
	for _, key := range accepted {
		set[key] = true
	}
	for _, c := range g.clauses {
		if !set[c.Key] {
			return false
		}
	}
	return true
}

func (g *Gate) validate(sub *ConsentSubmission) error {
	var missing []Requirement
	if !g.allClausesChecked(sub.AcceptedClauses) {
		missing = append(missing, RequirementClauses)
	}
	if strings.TrimSpace(sub.SignatureText) == "" {
		missing = append(missing, RequirementSignatureText)
	}
	if !validSignatureImage(sub.SignatureImage) {
		missing = append(missing, RequirementSignatureImage)
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// SubmitConsent records the viewer's binding acceptance. Nothing is written
// unless every requirement holds. A repeat submission returns the grant
// already on file.
func (g *Gate) SubmitConsent(ctx context.Context, sub *ConsentSubmission) (*types.UnlockGrant, error) {
	err := g.validate(sub)
	if err != nil {
		return nil, err
	}

	contentType := http.DetectContentType(sub.SignatureImage)

	path := signaturePath(sub.PitchID, sub.ViewerID, contentType)
	err = g.published.Upload(ctx, path, sub.SignatureImage, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store signature image: %w", err)
	}

	grant, err := g.grants.CreateGrant(ctx, &types.UnlockGrant{
		ViewerID:           sub.ViewerID,
		PitchID:            sub.PitchID,
		SignatureText:      strings.TrimSpace(sub.SignatureText),
		SignatureImagePath: path,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record grant: %w", err)
	}

	if grant.SignatureImagePath != path {
		// an earlier grant stands, drop the unused upload
		if derr := g.published.Delete(ctx, path); derr != nil {
			g.logger.WithError(derr).WithField("path", path).Warn("failed to remove unused signature image")
		}
	}

	g.logger.WithFields(logrus.Fields{
		"viewer_id": sub.ViewerID,
		"pitch_id":  sub.PitchID,
		"grant_id":  grant.ID,
	}).Info("nda accepted")

	return grant, nil
}

func validSignatureImage(data []byte) bool {
	if len(data) == 0 || len(data) > maxSignatureBytes {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(data), "image/")
}

func signaturePath(pitchID, viewerID, contentType string) string {
	return fmt.Sprintf("%s%s/%s/%s%s", storage.SignaturePrefix, pitchID, viewerID, uuid.NewString(), imageExtension(contentType))
}

func imageExtension(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ".png"
}
