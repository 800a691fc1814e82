package orchestration

const (
	// defaultLocale is the recognition language handed to the capture device
	// unless overridden with WithLocale.
	defaultLocale = "pt-BR"

	// apologyText is the fixed utterance spoken and recorded when a response
	// stream fails mid-turn.
	apologyText = "Peço desculpas, Senhor. Encontrei um erro interno."

	// errorBannerPrefix prefixes the transient error message surfaced through
	// the error callback on transport failures.
	errorBannerPrefix = "Erro de Sistema Jarvis: "
)
