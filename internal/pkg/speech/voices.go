package speech

type voicePair struct {
	Female string
	Male   string
}

// Polly voice selection per UI language. Languages with a single standard
// voice use it for both genders.
var pollyVoices = map[string]voicePair{
	"en-US": {Female: "Salli", Male: "Justin"},
	"en-GB": {Female: "Emma", Male: "Brian"},
	"en-AU": {Female: "Nicole", Male: "Russell"},
	"zh-CN": {Female: "Zhiyu", Male: "Zhiyu"},
	"fr-FR": {Female: "Celine", Male: "Mathieu"},
	"es-ES": {Female: "Conchita", Male: "Enrique"},
	"es-MX": {Female: "Mia", Male: "Andres"},
	"de-DE": {Female: "Marlene", Male: "Hans"},
	"it-IT": {Female: "Carla", Male: "Giorgio"},
	"ja-JP": {Female: "Mizuki", Male: "Takumi"},
	"ko-KR": {Female: "Seoyeon", Male: "Seoyeon"},
	"pt-BR": {Female: "Vitoria", Male: "Ricardo"},
	"pt-PT": {Female: "Ines", Male: "Cristiano"},
	"pl-PL": {Female: "Ewa", Male: "Jacek"},
	"ru-RU": {Female: "Tatyana", Male: "Maxim"},
	"tr-TR": {Female: "Filiz", Male: "Filiz"},
	"hi-IN": {Female: "Aditi", Male: "Aditi"},
}

// Polly uses cmn-CN for Mandarin; the other codes pass through unchanged.
var pollyLanguageCodes = map[string]string{
	"zh-CN": "cmn-CN",
}

// PollyVoiceID picks the voice for a language and gender, defaulting to the
// en-US pair for languages outside the map.
func PollyVoiceID(language string, female bool) string {
	voices, ok := pollyVoices[language]
	if !ok {
		voices = pollyVoices["en-US"]
	}
	if female {
		return voices.Female
	}
	return voices.Male
}

// PollyLanguageCode translates a UI language tag to Polly's language code.
func PollyLanguageCode(language string) string {
	if code, ok := pollyLanguageCodes[language]; ok {
		return code
	}
	if _, ok := pollyVoices[language]; !ok {
		return "en-US"
	}
	return language
}

const (
	minimaxFemaleVoice = "female-chengshu"
	minimaxMaleVoice   = "male-qn-qingse"
)

// Minimax covers a fixed subset of languages, keyed by UI tag with the
// provider's short code as value.
var minimaxLanguages = map[string]string{
	"zh-CN": "zh",
	"en-US": "en",
	"ja-JP": "ja",
	"ko-KR": "ko",
	"es-ES": "es",
	"fr-FR": "fr",
	"ru-RU": "ru",
	"it-IT": "it",
	"pt-PT": "pt",
	"de-DE": "de",
}

// MinimaxSupported reports whether Minimax can synthesize the language.
func MinimaxSupported(language string) bool {
	_, ok := minimaxLanguages[language]
	return ok
}

// MinimaxLanguageCode translates a UI language tag to Minimax's short code.
func MinimaxLanguageCode(language string) string {
	if code, ok := minimaxLanguages[language]; ok {
		return code
	}
	return language
}

// MinimaxVoiceID picks the voice id. Only Mandarin has a male voice; every
// other language renders with the female voice regardless of the request.
func MinimaxVoiceID(language string, female bool) string {
	if language == "zh-CN" && !female {
		return minimaxMaleVoice
	}
	return minimaxFemaleVoice
}
