package synthesis

import (
	"strings"

	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

// usesPlainText reports whether the voice belongs to a family that rejects
// markup input and must receive plain text chunks.
func usesPlainText(voice string) bool {
	v := strings.ToLower(voice)
	return strings.Contains(v, "chirp") || strings.Contains(v, "journey")
}

// buildRequests produces the ordered request sequence for one utterance:
// a single streaming config request followed by one input request per
// chunk. Markup-capable voices receive the chunk wrapped in SSML through
// the markup input source; chirp/journey voices receive the raw chunk.
// The sequence is sent lazily by the driver's producer goroutine.
func buildRequests(s Settings, chunks []string) []*texttospeechpb.StreamingSynthesizeRequest {
	reqs := make([]*texttospeechpb.StreamingSynthesizeRequest, 0, len(chunks)+1)
	reqs = append(reqs, &texttospeechpb.StreamingSynthesizeRequest{
		StreamingRequest: &texttospeechpb.StreamingSynthesizeRequest_StreamingConfig{
			StreamingConfig: &texttospeechpb.StreamingSynthesizeConfig{
				Voice: &texttospeechpb.VoiceSelectionParams{
					LanguageCode: s.Language,
					Name:         s.Voice,
				},
			},
		},
	})

	plain := usesPlainText(s.Voice)
	for _, chunk := range chunks {
		input := &texttospeechpb.StreamingSynthesisInput{}
		if plain {
			input.InputSource = &texttospeechpb.StreamingSynthesisInput_Text{Text: chunk}
		} else {
			input.InputSource = &texttospeechpb.StreamingSynthesisInput_Markup{Markup: BuildSSML(s, chunk)}
		}
		reqs = append(reqs, &texttospeechpb.StreamingSynthesizeRequest{
			StreamingRequest: &texttospeechpb.StreamingSynthesizeRequest_Input{Input: input},
		})
	}
	return reqs
}
