package intake

import (
	"context"
	"io"
	"sync"
	"testing"

	"venturelink/internal/storage"
	"venturelink/pkg/types"

	"github.com/sirupsen/logrus"
)

type fakeFiles struct {
	mu      sync.Mutex
	files   map[string]*types.PitchFile
	markErr error
}

func newFakeFiles(files ...*types.PitchFile) *fakeFiles {
	f := &fakeFiles{files: make(map[string]*types.PitchFile)}
	for _, file := range files {
		cp := *file
		f.files[file.ID] = &cp
	}
	return f
}

func (f *fakeFiles) PitchFile(_ context.Context, id string) (*types.PitchFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, ok := f.files[id]
	if !ok {
		return nil, types.ErrPitchFileNotFound
	}
	cp := *file
	return &cp, nil
}

func (f *fakeFiles) MarkQuarantined(_ context.Context, id string) error {
	return f.transition(id, func(file *types.PitchFile) {
		file.Quarantined = true
		file.HasContactInfo = true
	})
}

func (f *fakeFiles) MarkWatermarked(_ context.Context, id, path string) error {
	return f.transition(id, func(file *types.PitchFile) {
		file.Watermarked = true
		file.WatermarkedPath = &path
	})
}

func (f *fakeFiles) transition(id string, apply func(*types.PitchFile)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.markErr != nil {
		return f.markErr
	}
	file, ok := f.files[id]
	if !ok || file.Terminal() {
		return types.ErrFileAlreadyTerminal
	}
	apply(file)
	return nil
}

func (f *fakeFiles) get(id string) *types.PitchFile {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.files[id]
	return &cp
}

type fakePitches map[string]*types.Pitch

func (f fakePitches) Pitch(_ context.Context, id string) (*types.Pitch, error) {
	p, ok := f[id]
	if !ok {
		return nil, types.ErrPitchNotFound
	}
	return p, nil
}

// fakeReports keeps one report per file, like the unique constraint on
// reports.file_id.
type fakeReports struct {
	mu      sync.Mutex
	reports []*types.Report
	failErr error
}

func (f *fakeReports) CreateReport(_ context.Context, r *types.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failErr != nil {
		err := f.failErr
		f.failErr = nil
		return err
	}
	for _, existing := range f.reports {
		if existing.FileID != nil && r.FileID != nil && *existing.FileID == *r.FileID {
			return nil
		}
	}
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeReports) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

// flakyBucket fails the next Delete with deleteErr.
type flakyBucket struct {
	*storage.MemoryBucket
	deleteErr error
}

func (b *flakyBucket) Delete(ctx context.Context, path string) error {
	if b.deleteErr != nil {
		err := b.deleteErr
		b.deleteErr = nil
		return err
	}
	return b.MemoryBucket.Delete(ctx, path)
}

type harness struct {
	processor *Processor
	flaky     *flakyBucket
	intake    *storage.MemoryBucket
	published *storage.MemoryBucket
	files     *fakeFiles
	reports   *fakeReports
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newHarness(t *testing.T, files ...*types.PitchFile) *harness {
	t.Helper()

	h := &harness{
		intake:    storage.NewMemoryBucket("pitch-uploads"),
		published: storage.NewMemoryBucket("pitch-published"),
		files:     newFakeFiles(files...),
		reports:   &fakeReports{},
	}
	pitches := fakePitches{
		"pitch-1": {ID: "pitch-1", UserID: "owner-1", Title: "Compostable Packaging"},
	}
	h.flaky = &flakyBucket{MemoryBucket: h.intake}
	h.processor = NewProcessor(quietLogger(), h.flaky, h.published, h.files, pitches, h.reports)
	return h
}

func textFile(id string) *types.PitchFile {
	return &types.PitchFile{
		ID:          id,
		PitchID:     "pitch-1",
		StoragePath: "pitches/pitch-1/" + id + ".txt",
		FileName:    id + ".txt",
		ContentType: "text/plain; charset=utf-8",
	}
}
