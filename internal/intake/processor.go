// Package intake runs the moderation pipeline for uploaded pitch files. Each
// new file is scanned for contact details and either quarantined for review
// or watermarked and published.
package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"venturelink/internal/storage"
	"venturelink/internal/utils"
	"venturelink/pkg/types"

	"github.com/sirupsen/logrus"
)

// Outcome is what a single Process call did to a file.
type Outcome string

const (
	AlreadyProcessed Outcome = "already_processed"
	Quarantined      Outcome = "quarantined"
	Watermarked      Outcome = "watermarked"
)

type FileRecords interface {
	PitchFile(ctx context.Context, id string) (*types.PitchFile, error)
	MarkQuarantined(ctx context.Context, id string) error
	MarkWatermarked(ctx context.Context, id, watermarkedPath string) error
}

type PitchLookup interface {
	Pitch(ctx context.Context, pitchID string) (*types.Pitch, error)
}

type ReportWriter interface {
	CreateReport(ctx context.Context, report *types.Report) error
}

type Processor struct {
	logger *logrus.Logger

	intake    storage.Bucket
	published storage.Bucket

	files   FileRecords
	pitches PitchLookup
	reports ReportWriter

	detector     *Detector
	extractors   *ExtractorSet
	watermarkers *WatermarkerSet
}

func NewProcessor(
	logger *logrus.Logger,
	intake storage.Bucket,
	published storage.Bucket,
	files FileRecords,
	pitches PitchLookup,
	reports ReportWriter,
) *Processor {
	return &Processor{
		logger:       logger,
		intake:       intake,
		published:    published,
		files:        files,
		pitches:      pitches,
		reports:      reports,
		detector:     NewDetector(),
		extractors:   DefaultExtractors(),
		watermarkers: DefaultWatermarkers(),
	}
}

// Process moves a file record out of its initial state. Redelivery of an
// already handled record is a no-op that reports AlreadyProcessed, apart from
// finishing any cleanup an earlier attempt left behind.
func (p *Processor) Process(ctx context.Context, record *types.PitchFile) (Outcome, error) {
	entry := p.logger.WithFields(logrus.Fields{
		"file_id":  record.ID,
		"pitch_id": record.PitchID,
	})

	if record.Terminal() {
		entry.WithField("state", record.State()).Info("skipping already processed file")
		return AlreadyProcessed, nil
	}

	current, err := p.files.PitchFile(ctx, record.ID)
	if err != nil {
		return "", fmt.Errorf("failed to load pitch file %s: %w", record.ID, err)
	}
	if current.Terminal() {
		if current.State() == types.PitchFileStateWatermarked {
			if err := p.discardOriginal(ctx, current); err != nil {
				return "", err
			}
		}
		entry.WithField("state", current.State()).Info("skipping already processed file")
		return AlreadyProcessed, nil
	}

	data, relocated, err := p.fetch(ctx, current.StoragePath)
	if err != nil {
		return "", err
	}

	contentType := SniffContentType(current.ContentType, data)
	if contentType != current.ContentType {
		entry = entry.WithFields(logrus.Fields{
			"declared_type": current.ContentType,
			"content_type":  contentType,
		})
		entry.Warn("declared content type does not match file contents")
	}

	text := p.extractors.Extract(ctx, contentType, data)
	kinds := p.detector.Kinds(text)
	if len(kinds) > 0 || relocated {
		return p.quarantine(ctx, entry, current, kinds, relocated)
	}

	return p.publish(ctx, entry, current, contentType, data)
}

// fetch downloads the original upload. When the original is gone but a
// quarantined copy exists, an earlier attempt relocated it and failed before
// recording the outcome, so the quarantine branch resumes from there.
func (p *Processor) fetch(ctx context.Context, path string) ([]byte, bool, error) {
	data, err := p.intake.Download(ctx, path)
	if err == nil {
		return data, false, nil
	}
	if !errors.Is(err, types.ErrObjectNotFound) {
		return nil, false, fmt.Errorf("failed to download %s: %w", path, err)
	}

	data, qerr := p.intake.Download(ctx, storage.QuarantinePath(path))
	if qerr != nil {
		return nil, false, fmt.Errorf("failed to download %s: %w", path, err)
	}

	return data, true, nil
}

// quarantine files the report before marking the record so that a failure
// at any step leaves the record initial and a redelivery completes the run.
// Reports are unique per file, so the retry does not file a second one.
func (p *Processor) quarantine(ctx context.Context, entry *logrus.Entry, file *types.PitchFile, kinds []ContactKind, relocated bool) (Outcome, error) {
	if !relocated {
		err := p.intake.Move(ctx, file.StoragePath, storage.QuarantinePath(file.StoragePath))
		if err != nil {
			return "", fmt.Errorf("failed to quarantine %s: %w", file.StoragePath, err)
		}
	}

	details := fmt.Sprintf("file %q matched: %s", file.FileName, joinKinds(kinds))
	err := p.reports.CreateReport(ctx, &types.Report{
		PitchID: file.PitchID,
		FileID:  utils.StringPtr(file.ID),
		Reason:  types.ReportReasonContactInfo,
		Details: utils.StringPtr(details),
		Status:  types.ReportStatusOpen,
	})
	if err != nil {
		return "", fmt.Errorf("failed to file report for pitch file %s: %w", file.ID, err)
	}

	err = p.files.MarkQuarantined(ctx, file.ID)
	if errors.Is(err, types.ErrFileAlreadyTerminal) {
		entry.Warn("file reached a terminal state concurrently, leaving it as is")
		return AlreadyProcessed, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to mark pitch file %s quarantined: %w", file.ID, err)
	}

	entry.WithField("kinds", kinds).Info("quarantined file containing contact info")
	return Quarantined, nil
}

func (p *Processor) publish(ctx context.Context, entry *logrus.Entry, file *types.PitchFile, contentType string, data []byte) (Outcome, error) {
	pitch, err := p.pitches.Pitch(ctx, file.PitchID)
	if err != nil {
		return "", fmt.Errorf("failed to load pitch %s: %w", file.PitchID, err)
	}

	marked, err := p.watermarkers.Apply(ctx, contentType, data, Mark{PitchID: pitch.ID, OwnerID: pitch.UserID})
	if err != nil {
		return "", fmt.Errorf("failed to watermark pitch file %s: %w", file.ID, err)
	}

	processedPath := storage.ProcessedPath(file.StoragePath)
	err = p.published.Upload(ctx, processedPath, marked, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", processedPath, err)
	}

	err = p.files.MarkWatermarked(ctx, file.ID, processedPath)
	if errors.Is(err, types.ErrFileAlreadyTerminal) {
		entry.Warn("file reached a terminal state concurrently, leaving it as is")
		return AlreadyProcessed, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to mark pitch file %s watermarked: %w", file.ID, err)
	}

	if err := p.discardOriginal(ctx, file); err != nil {
		return "", err
	}

	entry.WithField("path", processedPath).Info("published watermarked file")
	return Watermarked, nil
}

// discardOriginal removes the raw upload of a published file. A redelivery
// of a watermarked record calls it again until it succeeds.
func (p *Processor) discardOriginal(ctx context.Context, file *types.PitchFile) error {
	err := p.intake.Delete(ctx, file.StoragePath)
	if err != nil && !errors.Is(err, types.ErrObjectNotFound) {
		return fmt.Errorf("failed to remove original %s: %w", file.StoragePath, err)
	}
	return nil
}

func joinKinds(kinds []ContactKind) string {
	if len(kinds) == 0 {
		return "previously relocated"
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
