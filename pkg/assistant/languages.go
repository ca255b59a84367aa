package assistant

import "strings"

// Supported interface languages. French is the default; TN is Tunisian
// dialect written in the Latin alphabet, as students actually type it.
const (
	LanguageFR = "FR"
	LanguageEN = "EN"
	LanguageTN = "TN"
)

// NormalizeLanguage maps a client-supplied language code to a supported
// one. Matching is case-insensitive; unknown codes fall back to French.
func NormalizeLanguage(code string) string {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case LanguageEN:
		return LanguageEN
	case LanguageTN:
		return LanguageTN
	default:
		return LanguageFR
	}
}

// languageTexts holds the localized strings the pipeline can emit without
// a model call.
type languageTexts struct {
	notFound    string
	rateLimit   string
	unavailable string
	greeting    string
	thanks      string
}

var texts = map[string]languageTexts{
	LanguageFR: {
		notFound:    "Cette information n'est pas disponible dans les documents officiels.",
		rateLimit:   "Limite de requêtes atteinte. Veuillez patienter un instant.",
		unavailable: "Désolé, le service est momentanément indisponible. Merci de réessayer dans quelques instants.",
		greeting: "Salut 👋 Je peux t'aider avec les infos universitaires. " +
			"Exemples: `je veux connaître mes notes`, `comment faire l'inscription`, " +
			"`documents pour la bourse` 🙂",
		thanks: "Avec plaisir 😊 Si tu veux, je peux aussi t'aider pour inscription, notes, bourse ou stage.",
	},
	LanguageEN: {
		notFound:    "This information is not available in the official documents.",
		rateLimit:   "Rate limit reached. Please wait.",
		unavailable: "Sorry, the service is temporarily unavailable. Please try again in a few moments.",
		greeting: "Hi 👋 Welcome! I can help with university info. " +
			"Try: `I want to check my grades`, `how to enroll`, `scholarship documents` 🙂",
		thanks: "You're welcome 😊 If you want, I can also help with enrollment, grades, scholarships, or internships.",
	},
	LanguageTN: {
		notFound:    "Hedhi el ma3louma mawjoudech fel documents er-rasmiya.",
		rateLimit:   "Estanna chwaya, wselt lel limite.",
		unavailable: "Sma7na, el service mahouch disponible tawa. 3awed jarreb ba3d chwaya.",
		greeting: "Asslema 👋 Ahlan bik! Njem n3awnek fi les infos mta3 l-jam3a. " +
			"Exemples: `nheb na3ref noteti`, `kifech na3mel inscription`, " +
			"`chnowa documents mta3 bourse` 🙂",
		thanks: "3la rassi 😊 Ken theb, njem n3awnek zeda b inscription, notes, bourse, stage...",
	},
}

func textsFor(lang string) languageTexts {
	if t, ok := texts[strings.ToUpper(strings.TrimSpace(lang))]; ok {
		return t
	}
	return texts[LanguageFR]
}

// NotFoundText is the localized sentence for information missing from the
// official documents. The system prompts embed it verbatim so refusals
// stay recognizable.
func NotFoundText(lang string) string {
	return textsFor(lang).notFound
}

// RateLimitNotice is the localized message shown to rate-limited clients.
func RateLimitNotice(lang string) string {
	return textsFor(lang).rateLimit
}

// UnavailableText is the localized apology returned when every model
// candidate has been exhausted.
func UnavailableText(lang string) string {
	return textsFor(lang).unavailable
}
