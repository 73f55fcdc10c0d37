package fetch

import (
	"sync"

	"github.com/starlab-dev/starlab/internal/notify"
)

const (
	defaultLoadingText = "Loading..."
	defaultSuccessText = "Loaded"
)

// Notice is one notification slot. The zero value shows nothing.
type Notice struct {
	Enabled bool
	// Text replaces the default message when set
	Text string
}

// Show enables a notice with its default text
func Show() Notice {
	return Notice{Enabled: true}
}

// Say enables a notice with a literal message
func Say(text string) Notice {
	return Notice{Enabled: true, Text: text}
}

func (n Notice) message(fallback string) string {
	if n.Text != "" {
		return n.Text
	}
	return fallback
}

// Notices selects which lifecycle notifications a query shows
type Notices struct {
	Loading Notice
	Success Notice
	Error   Notice
}

func (n Notices) any() bool {
	return n.Loading.Enabled || n.Success.Enabled || n.Error.Enabled
}

// noticeListener turns lifecycle events into notifications. The loading
// toast is shown at most once at a time and is either replaced by the
// success/error toast or dismissed when the fetch settles.
type noticeListener struct {
	notifier  notify.Notifier
	notices   Notices
	errorText func(error) string

	mutex     sync.Mutex
	loadingID notify.ID
}

func newNoticeListener(notifier notify.Notifier, notices Notices, errorText func(error) string) *noticeListener {
	return &noticeListener{notifier: notifier, notices: notices, errorText: errorText}
}

func (l *noticeListener) OnEvent(e Event) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	switch e.Kind {
	case EventStarted:
		if l.notices.Loading.Enabled && !e.HadData && l.loadingID == "" {
			l.loadingID = notify.Loading(l.notifier, l.notices.Loading.message(defaultLoadingText))
		}
	case EventSucceeded:
		if l.notices.Success.Enabled {
			l.settle(notify.SeveritySuccess, l.notices.Success.message(defaultSuccessText))
		}
		l.dismissLoading()
	case EventFailed:
		if l.notices.Error.Enabled {
			l.settle(notify.SeverityError, l.notices.Error.message(l.describe(e.Err)))
		}
		l.dismissLoading()
	case EventClosed:
		l.dismissLoading()
	}
}

// settle shows the outcome, in place of the loading toast when there is one
func (l *noticeListener) settle(severity notify.Severity, message string) {
	l.notifier.Show(notify.Notification{ID: l.loadingID, Severity: severity, Message: message})
	l.loadingID = ""
}

func (l *noticeListener) dismissLoading() {
	if l.loadingID != "" {
		l.notifier.Dismiss(l.loadingID)
		l.loadingID = ""
	}
}

func (l *noticeListener) describe(err error) string {
	if l.errorText != nil {
		if text := l.errorText(err); text != "" {
			return text
		}
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Request failed"
}
