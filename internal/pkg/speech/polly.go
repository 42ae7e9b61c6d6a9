package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/gofiber/fiber/v2/log"

	"github.com/voicecanvas/voicecanvas/internal/pkg/env"
)

const pollyRequestTimeout = 10 * time.Second

// pollyAPI is the slice of the Polly client the synthesizer uses.
type pollyAPI interface {
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// PollySynthesizer renders speech with AWS Polly standard voices.
type PollySynthesizer struct {
	client pollyAPI
}

// NewPollySynthesizer builds a Polly synthesizer from AWS_REGION and the
// AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY pair.
func NewPollySynthesizer() (*PollySynthesizer, error) {
	region := env.GetEnv("AWS_REGION", "us-east-1")
	accessKey := env.GetEnv("AWS_ACCESS_KEY_ID", "")
	secretKey := env.GetEnv("AWS_SECRET_ACCESS_KEY", "")

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Infof("[Speech] Polly client initialized for region %s", region)
	return &PollySynthesizer{client: polly.NewFromConfig(awsConfig)}, nil
}

func (s *PollySynthesizer) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, pollyRequestTimeout)
	defer cancel()

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = PollyVoiceID(req.Language, req.Female)
	}

	input := &polly.SynthesizeSpeechInput{
		Engine:       types.EngineStandard,
		LanguageCode: types.LanguageCode(PollyLanguageCode(req.Language)),
		OutputFormat: types.OutputFormatMp3,
		SampleRate:   aws.String("24000"),
		Text:         aws.String(req.Text),
		TextType:     types.TextTypeText,
		VoiceId:      types.VoiceId(voiceID),
	}

	output, err := s.client.SynthesizeSpeech(ctx, input)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, ErrProviderTimeout
		}
		return nil, fmt.Errorf("speech: polly synthesis failed: %w", err)
	}
	if output.AudioStream == nil {
		return nil, fmt.Errorf("%w: no audio stream", ErrProviderResponse)
	}
	defer output.AudioStream.Close()

	audio, err := io.ReadAll(output.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("%w: reading audio stream: %v", ErrProviderResponse, err)
	}
	return audio, nil
}
