package synthesis

import "strings"

// BuildSSML wraps a text chunk in voice markup derived from the settings.
// Optional wrappers (prosody, emphasis, style) are emitted only when the
// matching setting is present, and closed in exact reverse order of opening.
//
// Text is interpolated verbatim. Chunks containing markup-breaking
// characters will produce invalid documents; sanitizing input is the
// caller's responsibility.
func BuildSSML(s Settings, text string) string {
	var b strings.Builder
	b.WriteString("<speak>")

	b.WriteString("<voice name='")
	b.WriteString(s.Voice)
	b.WriteString("' language='")
	b.WriteString(s.Language)
	b.WriteString("'")
	if s.Gender != "" {
		b.WriteString(" gender='")
		b.WriteString(s.Gender)
		b.WriteString("'")
	}
	b.WriteString(">")

	var prosody []string
	if s.Pitch != "" {
		prosody = append(prosody, "pitch='"+s.Pitch+"'")
	}
	if s.Rate != "" {
		prosody = append(prosody, "rate='"+s.Rate+"'")
	}
	if s.Volume != "" {
		prosody = append(prosody, "volume='"+s.Volume+"'")
	}
	if len(prosody) > 0 {
		b.WriteString("<prosody ")
		b.WriteString(strings.Join(prosody, " "))
		b.WriteString(">")
	}

	if s.Emphasis != "" {
		b.WriteString("<emphasis level='")
		b.WriteString(s.Emphasis)
		b.WriteString("'>")
	}

	if s.Style != "" {
		b.WriteString("<google:style name='")
		b.WriteString(s.Style)
		b.WriteString("'>")
	}

	b.WriteString(text)

	if s.Style != "" {
		b.WriteString("</google:style>")
	}
	if s.Emphasis != "" {
		b.WriteString("</emphasis>")
	}
	if len(prosody) > 0 {
		b.WriteString("</prosody>")
	}
	b.WriteString("</voice></speak>")

	return b.String()
}
