package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/murmurlabs/murmur-speech/internal/config"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
)

// synthStream is the duplex streaming call surface the driver needs. The
// Google client's stream satisfies it; tests substitute a fake.
type synthStream interface {
	Send(*texttospeechpb.StreamingSynthesizeRequest) error
	Recv() (*texttospeechpb.StreamingSynthesizeResponse, error)
	CloseSend() error
}

// streamOpener opens one duplex stream per synthesize call.
type streamOpener interface {
	openStream(ctx context.Context) (synthStream, error)
	close() error
}

type googleOpener struct {
	client *texttospeech.Client
}

func (g *googleOpener) openStream(ctx context.Context) (synthStream, error) {
	return g.client.StreamingSynthesize(ctx)
}

func (g *googleOpener) close() error {
	return g.client.Close()
}

// NewGoogleSynthesizer builds an authenticated streaming client. Credential
// sources are tried in priority order: inline JSON, key file path, ambient
// default credentials. Failure to resolve any source is fatal here rather
// than deferred to the first call.
func NewGoogleSynthesizer(ctx context.Context, cfg config.SynthesisConfig, metrics *Metrics, logger *slog.Logger) (*Streamer, error) {
	opts, err := credentialOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts = append(opts, option.WithGRPCDialOption(grpc.WithUserAgent("murmur-speech/"+Version)))
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("resolve synthesis credentials: %w", err)
	}
	return newStreamer(&googleOpener{client: client}, SettingsFromConfig(cfg), metrics, logger), nil
}

func credentialOptions(cfg config.SynthesisConfig) ([]option.ClientOption, error) {
	if cfg.CredentialsJSON != "" {
		if !json.Valid([]byte(cfg.CredentialsJSON)) {
			return nil, fmt.Errorf("synthesis credentials_json is not valid JSON")
		}
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cfg.CredentialsJSON))}, nil
	}
	if cfg.CredentialsPath != "" {
		return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsPath)}, nil
	}
	// Ambient application default credentials.
	return nil, nil
}
