// Package notifications delivers best-effort push and SMS messages for
// workflow transitions. Nothing here reports failure to the caller.
package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/voo-ward/voo-citizen-backend/pkg/db/models"
	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
	"github.com/voo-ward/voo-citizen-backend/pkg/fcm"
	"github.com/voo-ward/voo-citizen-backend/pkg/logger"
	"github.com/voo-ward/voo-citizen-backend/pkg/metrics"
)

const defaultTimeout = 15 * time.Second

// PushSender delivers one push message.
type PushSender interface {
	Send(ctx context.Context, msg fcm.Message) (string, error)
}

// SMSSender delivers one text message.
type SMSSender interface {
	Send(ctx context.Context, to, message string) error
}

// Notifier is the surface the workflow services call after a transition.
type Notifier interface {
	IssueStatusChanged(ctx context.Context, owner *models.User, issue *models.Issue)
	BursaryApproved(ctx context.Context, applicant *models.User, application *models.BursaryApplication)
	LostIDFound(ctx context.Context, reporter *models.User, report *models.LostIDReport)
}

// DispatcherParams configures the dispatcher. Nil senders disable the channel.
type DispatcherParams struct {
	Push    PushSender
	SMS     SMSSender
	Logger  *logger.Logger
	Metrics *metrics.AdapterMetrics
	Timeout time.Duration
}

// Dispatcher runs each delivery on a tracked goroutine detached from the
// request context.
type Dispatcher struct {
	push    PushSender
	sms     SMSSender
	logg    *logger.Logger
	metrics *metrics.AdapterMetrics
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher builds a dispatcher.
func NewDispatcher(params DispatcherParams) *Dispatcher {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		push:    params.Push,
		sms:     params.SMS,
		logg:    params.Logger,
		metrics: params.Metrics,
		timeout: timeout,
	}
}

func (d *Dispatcher) IssueStatusChanged(ctx context.Context, owner *models.User, issue *models.Issue) {
	if issue == nil || !owner.HasDeviceToken() {
		return
	}
	title, body := IssueStatusContent(issue.Status, issue.Title)
	msg := fcm.Message{
		Token: *owner.FCMToken,
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":    dataTypeStatusUpdate,
			"issueId": issue.ID.String(),
			"status":  issue.Status.String(),
		},
	}
	d.dispatch(ctx, func(ctx context.Context) {
		d.sendPush(ctx, msg)
	})
}

// BursaryApproved sends the approval push when the applicant has a device
// token, and always attempts the SMS.
func (d *Dispatcher) BursaryApproved(ctx context.Context, applicant *models.User, application *models.BursaryApplication) {
	if applicant == nil || application == nil {
		return
	}
	var push *fcm.Message
	if applicant.HasDeviceToken() {
		title, body := BursaryApprovedContent(application.ApplicationNumber)
		push = &fcm.Message{
			Token: *applicant.FCMToken,
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":              dataTypeBursaryApproved,
				"applicationId":     application.ID.String(),
				"applicationNumber": application.ApplicationNumber,
			},
		}
	}
	phone := applicant.Phone
	text := BursaryApprovedSMS(application.ApplicationNumber)
	d.dispatch(ctx, func(ctx context.Context) {
		if push != nil {
			d.sendPush(ctx, *push)
		}
		d.sendSMS(ctx, phone, text)
	})
}

func (d *Dispatcher) LostIDFound(ctx context.Context, reporter *models.User, report *models.LostIDReport) {
	if report == nil || report.Status != enums.LostIDStatusFound || !reporter.HasDeviceToken() {
		return
	}
	location := ""
	if report.CollectionLocation != nil {
		location = *report.CollectionLocation
	}
	title, body := LostIDFoundContent(location)
	msg := fcm.Message{
		Token: *reporter.FCMToken,
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":         dataTypeLostIDFound,
			"reportId":     report.ID.String(),
			"reportNumber": report.ReportNumber,
		},
	}
	d.dispatch(ctx, func(ctx context.Context) {
		d.sendPush(ctx, msg)
	})
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, fn func(context.Context)) {
	detached := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil && d.logg != nil {
				logCtx := d.logg.WithFields(detached, map[string]any{"panic": r})
				d.logg.Warn(logCtx, "notifications.dispatch.panic")
			}
		}()
		runCtx, cancel := context.WithTimeout(detached, d.timeout)
		defer cancel()
		fn(runCtx)
	}()
}

func (d *Dispatcher) sendPush(ctx context.Context, msg fcm.Message) {
	if d.push == nil {
		return
	}
	started := time.Now()
	_, err := d.push.Send(ctx, msg)
	d.metrics.Observe("push", started, err)
	if err != nil {
		d.warn(ctx, "notifications.push.failed", err)
	}
}

func (d *Dispatcher) sendSMS(ctx context.Context, to, text string) {
	if d.sms == nil || to == "" {
		return
	}
	started := time.Now()
	err := d.sms.Send(ctx, to, text)
	d.metrics.Observe("sms", started, err)
	if err != nil {
		d.warn(ctx, "notifications.sms.failed", err)
	}
}

func (d *Dispatcher) warn(ctx context.Context, event string, err error) {
	if d.logg == nil {
		return
	}
	logCtx := d.logg.WithFields(ctx, map[string]any{"error": err.Error()})
	d.logg.Warn(logCtx, event)
}
