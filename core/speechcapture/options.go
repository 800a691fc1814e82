// Package speechcapture defines the contract of a speech-capture device: an
// exclusive microphone-to-transcript collaborator that produces at most one
// final transcript per capture cycle.
package speechcapture

type CaptureOptions struct {
	// Locale is the BCP 47 recognition language, e.g. "pt-BR".
	Locale string

	CaptureStartedCallback func()
	CaptureEndedCallback   func()
	ResultCallback         func(transcript string)
	ErrorCallback          func(code string)
}

type CaptureOption func(*CaptureOptions)

func WithLocale(locale string) CaptureOption {
	return func(o *CaptureOptions) {
		o.Locale = locale
	}
}

func WithCaptureStartedCallback(callback func()) CaptureOption {
	return func(o *CaptureOptions) {
		o.CaptureStartedCallback = callback
	}
}

func WithCaptureEndedCallback(callback func()) CaptureOption {
	return func(o *CaptureOptions) {
		o.CaptureEndedCallback = callback
	}
}

func WithResultCallback(callback func(transcript string)) CaptureOption {
	return func(o *CaptureOptions) {
		o.ResultCallback = callback
	}
}

func WithErrorCallback(callback func(code string)) CaptureOption {
	return func(o *CaptureOptions) {
		o.ErrorCallback = callback
	}
}
