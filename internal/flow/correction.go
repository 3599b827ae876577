package flow

import (
	"context"
	"strings"
	"time"

	"ipopredict/pkg/predictor"
)

// Correction is the state of the actual-price form.
type Correction struct {
	Form   CorrectionForm
	Busy   bool
	Err    string
	Notice string

	noticeID int
}

// NewCorrection returns a correction flow with its listing date defaulted
// to the day of now.
func NewCorrection(now time.Time) *Correction {
	return &Correction{Form: NewCorrectionForm(now)}
}

// Begin starts an update of c.Form, clearing the previous error and notice.
// ok is false when the form does not coerce or a request is in flight.
func (c *Correction) Begin() (upd predictor.ActualPriceUpdate, ok bool) {
	if c.Busy {
		return predictor.ActualPriceUpdate{}, false
	}
	c.Err = ""
	c.Notice = ""

	upd, err := CoerceCorrection(c.Form)
	if err != nil {
		c.Err = err.Error()
		return predictor.ActualPriceUpdate{}, false
	}
	c.Busy = true
	return upd, true
}

// Finish records the outcome of the call started by Begin. On success the
// form is reset to blank fields and today's date, and a notice is raised.
// The returned id identifies that notice for DismissNotice; it is zero when
// no notice was raised.
func (c *Correction) Finish(ack *predictor.UpdateAck, err error, now time.Time) int {
	c.Busy = false
	if err != nil {
		c.Err = predictor.ErrorMessage(err, UpdateFallback)
		return 0
	}
	c.Err = ""
	c.Form = NewCorrectionForm(now)
	c.Notice = UpdateSuccess
	if ack != nil && strings.TrimSpace(ack.Message) != "" {
		c.Notice = ack.Message
	}
	c.noticeID++
	return c.noticeID
}

// DismissNotice hides the notice raised with id. A stale id, from a notice
// that has since been replaced, is ignored.
func (c *Correction) DismissNotice(id int) {
	if id == c.noticeID {
		c.Notice = ""
	}
}

// Run performs a whole update synchronously against svc.
func (c *Correction) Run(ctx context.Context, svc Service, now time.Time) {
	upd, ok := c.Begin()
	if !ok {
		return
	}
	ack, err := svc.UpdateActualPrice(ctx, upd)
	c.Finish(ack, err, now)
}
