package synthesis

import "testing"

func TestLookupLocaleBase(t *testing.T) {
	cases := map[string]string{
		"en": "en-US",
		"fr": "fr-FR",
		"de": "de-DE",
		"zh": "cmn-CN",
		"pt": "pt-PT",
	}
	for lang, want := range cases {
		got, ok := LookupLocale(lang)
		if !ok {
			t.Fatalf("expected %q to resolve", lang)
		}
		if got != want {
			t.Fatalf("lookup %q: got %q, want %q", lang, got, want)
		}
	}
}

func TestLookupLocaleRegional(t *testing.T) {
	cases := map[string]string{
		"en-GB": "en-GB",
		"fr-CA": "fr-CA",
		"zh-TW": "cmn-TW",
		"zh-HK": "yue-HK",
		"nl-BE": "nl-BE",
	}
	for lang, want := range cases {
		got, ok := LookupLocale(lang)
		if !ok {
			t.Fatalf("expected %q to resolve", lang)
		}
		if got != want {
			t.Fatalf("lookup %q: got %q, want %q", lang, got, want)
		}
	}
}

func TestLookupLocaleUnknown(t *testing.T) {
	if got, ok := LookupLocale("xx-YY"); ok {
		t.Fatalf("expected unknown language to miss, got %q", got)
	}
}

func TestSettingsFromConfigLocaleFallback(t *testing.T) {
	s := SettingsFromConfig(configWithLanguage("klingon"))
	if s.Language != "en-US" {
		t.Fatalf("unknown language should fall back to en-US, got %q", s.Language)
	}
	s = SettingsFromConfig(configWithLanguage("es"))
	if s.Language != "es-ES" {
		t.Fatalf("expected es-ES, got %q", s.Language)
	}
}
