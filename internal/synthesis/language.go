package synthesis

// googleLocales maps abstract language identifiers to the locale tags the
// Google synthesis voices are published under. Base identifiers resolve to
// the provider's primary region; regional identifiers pass through to their
// own tag where a distinct voice set exists.
var googleLocales = map[string]string{
	"af":     "af-ZA",
	"af-ZA":  "af-ZA",
	"ar":     "ar-XA",
	"bn":     "bn-IN",
	"bn-IN":  "bn-IN",
	"bg":     "bg-BG",
	"bg-BG":  "bg-BG",
	"ca":     "ca-ES",
	"ca-ES":  "ca-ES",
	"zh":     "cmn-CN",
	"zh-CN":  "cmn-CN",
	"zh-TW":  "cmn-TW",
	"zh-HK":  "yue-HK",
	"cs":     "cs-CZ",
	"cs-CZ":  "cs-CZ",
	"da":     "da-DK",
	"da-DK":  "da-DK",
	"nl":     "nl-NL",
	"nl-BE":  "nl-BE",
	"nl-NL":  "nl-NL",
	"en":     "en-US",
	"en-US":  "en-US",
	"en-AU":  "en-AU",
	"en-GB":  "en-GB",
	"en-IN":  "en-IN",
	"et":     "et-EE",
	"et-EE":  "et-EE",
	"fil":    "fil-PH",
	"fil-PH": "fil-PH",
	"fi":     "fi-FI",
	"fi-FI":  "fi-FI",
	"fr":     "fr-FR",
	"fr-CA":  "fr-CA",
	"fr-FR":  "fr-FR",
	"gl":     "gl-ES",
	"gl-ES":  "gl-ES",
	"de":     "de-DE",
	"de-DE":  "de-DE",
	"el":     "el-GR",
	"el-GR":  "el-GR",
	"gu":     "gu-IN",
	"gu-IN":  "gu-IN",
	"he":     "he-IL",
	"he-IL":  "he-IL",
	"hi":     "hi-IN",
	"hi-IN":  "hi-IN",
	"hu":     "hu-HU",
	"hu-HU":  "hu-HU",
	"is":     "is-IS",
	"is-IS":  "is-IS",
	"id":     "id-ID",
	"id-ID":  "id-ID",
	"it":     "it-IT",
	"it-IT":  "it-IT",
	"ja":     "ja-JP",
	"ja-JP":  "ja-JP",
	"kn":     "kn-IN",
	"kn-IN":  "kn-IN",
	"ko":     "ko-KR",
	"ko-KR":  "ko-KR",
	"lv":     "lv-LV",
	"lv-LV":  "lv-LV",
	"lt":     "lt-LT",
	"lt-LT":  "lt-LT",
	"ms":     "ms-MY",
	"ms-MY":  "ms-MY",
	"ml":     "ml-IN",
	"ml-IN":  "ml-IN",
	"mr":     "mr-IN",
	"mr-IN":  "mr-IN",
	"no":     "nb-NO",
	"nb":     "nb-NO",
	"nb-NO":  "nb-NO",
	"pl":     "pl-PL",
	"pl-PL":  "pl-PL",
	"pt":     "pt-PT",
	"pt-BR":  "pt-BR",
	"pt-PT":  "pt-PT",
	"pa":     "pa-IN",
	"pa-IN":  "pa-IN",
	"ro":     "ro-RO",
	"ro-RO":  "ro-RO",
	"ru":     "ru-RU",
	"ru-RU":  "ru-RU",
	"sr":     "sr-RS",
	"sr-RS":  "sr-RS",
	"sk":     "sk-SK",
	"sk-SK":  "sk-SK",
	"es":     "es-ES",
	"es-ES":  "es-ES",
	"es-US":  "es-US",
	"sv":     "sv-SE",
	"sv-SE":  "sv-SE",
	"ta":     "ta-IN",
	"ta-IN":  "ta-IN",
	"te":     "te-IN",
	"te-IN":  "te-IN",
	"th":     "th-TH",
	"th-TH":  "th-TH",
	"tr":     "tr-TR",
	"tr-TR":  "tr-TR",
	"uk":     "uk-UA",
	"uk-UA":  "uk-UA",
	"vi":     "vi-VN",
	"vi-VN":  "vi-VN",
}

// LookupLocale resolves an abstract language identifier to a provider locale
// tag. The second return value is false when the identifier is unknown;
// callers are expected to fall back to a default.
func LookupLocale(language string) (string, bool) {
	locale, ok := googleLocales[language]
	return locale, ok
}
