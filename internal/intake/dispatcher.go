package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"venturelink/pkg/types"

	"github.com/sirupsen/logrus"
)

const dispatchTimeout = 2 * time.Minute

// Dispatcher hands a newly registered file to the pipeline without making
// the uploader wait for the outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, file *types.PitchFile)
	Wait()
}

// WebhookDispatcher delivers the insert event to the intake endpoint over HTTP.
type WebhookDispatcher struct {
	logger *logrus.Logger
	client *http.Client
	url    string
	secret string
	wg     sync.WaitGroup
}

func NewWebhookDispatcher(logger *logrus.Logger, client *http.Client, url, secret string) *WebhookDispatcher {
	if client == nil {
		client = &http.Client{Timeout: dispatchTimeout}
	}
	return &WebhookDispatcher{
		logger: logger,
		client: client,
		url:    url,
		secret: secret,
	}
}

func (d *WebhookDispatcher) Dispatch(ctx context.Context, file *types.PitchFile) {
	body, err := json.Marshal(NewEvent(file))
	if err != nil {
		d.logger.WithError(err).WithField("file_id", file.ID).Error("failed to encode intake event")
		return
	}

	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
		defer cancel()

		err := d.deliver(ctx, body)
		if err != nil {
			d.logger.WithError(err).WithField("file_id", file.ID).Error("failed to deliver intake event")
		}
	}()
}

func (d *WebhookDispatcher) deliver(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.secret != "" {
		req.Header.Set("Authorization", "Bearer "+d.secret)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("intake endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	return nil
}

func (d *WebhookDispatcher) Wait() {
	d.wg.Wait()
}

// LocalDispatcher runs the pipeline in-process on a background goroutine.
type LocalDispatcher struct {
	logger    *logrus.Logger
	processor *Processor
	wg        sync.WaitGroup
}

func NewLocalDispatcher(logger *logrus.Logger, processor *Processor) *LocalDispatcher {
	return &LocalDispatcher{logger: logger, processor: processor}
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, file *types.PitchFile) {
	ctx = context.WithoutCancel(ctx)
	record := *file

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
		defer cancel()

		outcome, err := d.processor.Process(ctx, &record)
		entry := d.logger.WithField("file_id", record.ID)
		if err != nil {
			entry.WithError(err).Error("intake processing failed")
			return
		}
		entry.WithField("outcome", outcome).Debug("intake processing finished")
	}()
}

func (d *LocalDispatcher) Wait() {
	d.wg.Wait()
}
