package speech

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/voicecanvas/voicecanvas/internal/pkg/env"
)

const (
	minimaxDefaultBaseURL = "https://api.minimax.chat"
	minimaxModel          = "speech-01-turbo"
	minimaxRequestTimeout = 15 * time.Second
)

// MinimaxSynthesizer renders speech with the Minimax t2a_v2 API. The API
// answers JSON with the MP3 payload hex-encoded in data.audio.
type MinimaxSynthesizer struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	groupID    string
}

// NewMinimaxSynthesizer builds a synthesizer from MINIMAX_API_KEY and
// MINIMAX_GROUP_ID.
func NewMinimaxSynthesizer() *MinimaxSynthesizer {
	return &MinimaxSynthesizer{
		httpClient: &http.Client{Timeout: minimaxRequestTimeout},
		baseURL:    env.GetEnv("MINIMAX_BASE_URL", minimaxDefaultBaseURL),
		apiKey:     env.GetEnv("MINIMAX_API_KEY", ""),
		groupID:    env.GetEnv("MINIMAX_GROUP_ID", ""),
	}
}

type minimaxTimberWeight struct {
	VoiceID string `json:"voice_id"`
	Weight  int    `json:"weight"`
}

type minimaxVoiceSetting struct {
	VoiceID   string  `json:"voice_id"`
	Speed     float64 `json:"speed"`
	Pitch     int     `json:"pitch"`
	Vol       int     `json:"vol"`
	LatexRead bool    `json:"latex_read"`
}

type minimaxAudioSetting struct {
	SampleRate int    `json:"sample_rate"`
	Bitrate    int    `json:"bitrate"`
	Format     string `json:"format"`
}

type minimaxRequest struct {
	Model         string                `json:"model"`
	Text          string                `json:"text"`
	TimberWeights []minimaxTimberWeight `json:"timber_weights"`
	VoiceSetting  minimaxVoiceSetting   `json:"voice_setting"`
	AudioSetting  minimaxAudioSetting   `json:"audio_setting"`
	LanguageBoost string                `json:"language_boost"`
}

type minimaxResponse struct {
	Data struct {
		Audio string `json:"audio"`
	} `json:"data"`
	BaseResp struct {
		StatusCode int    `json:"status_code"`
		StatusMsg  string `json:"status_msg"`
	} `json:"base_resp"`
}

func (s *MinimaxSynthesizer) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if !MinimaxSupported(req.Language) {
		return nil, ErrUnsupportedLanguage
	}

	ctx, cancel := context.WithTimeout(ctx, minimaxRequestTimeout)
	defer cancel()

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = MinimaxVoiceID(req.Language, req.Female)
	}

	payload := minimaxRequest{
		Model: minimaxModel,
		Text:  req.Text,
		TimberWeights: []minimaxTimberWeight{
			{VoiceID: voiceID, Weight: 100},
		},
		VoiceSetting:  minimaxVoiceSetting{Speed: 1, Vol: 1},
		AudioSetting:  minimaxAudioSetting{SampleRate: 32000, Bitrate: 128000, Format: "mp3"},
		LanguageBoost: "auto",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/t2a_v2?GroupId=%s", s.baseURL, s.groupID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, ErrProviderTimeout
		}
		return nil, fmt.Errorf("speech: minimax request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http status %d", ErrProviderResponse, resp.StatusCode)
	}

	var decoded minimaxResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderResponse, err)
	}
	if decoded.BaseResp.StatusCode != 0 || decoded.Data.Audio == "" {
		if decoded.BaseResp.StatusMsg != "" {
			return nil, fmt.Errorf("%w: %s", ErrProviderResponse, decoded.BaseResp.StatusMsg)
		}
		return nil, ErrProviderResponse
	}

	audio, err := hex.DecodeString(decoded.Data.Audio)
	if err != nil {
		return nil, fmt.Errorf("%w: audio payload is not hex", ErrProviderResponse)
	}
	return audio, nil
}
