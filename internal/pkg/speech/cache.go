package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/voicecanvas/voicecanvas/internal/pkg/cache"
)

const audioCacheTTL = 24 * time.Hour

// AudioCache stores rendered MP3 payloads keyed by the full request. Cache
// failures are soft: a miss or a write error falls through to synthesis.
type AudioCache interface {
	Get(req Request) ([]byte, bool)
	Set(req Request, audio []byte)
}

type redisAudioCache struct{}

// NewRedisAudioCache returns an AudioCache backed by the shared Redis client.
func NewRedisAudioCache() AudioCache {
	return redisAudioCache{}
}

func cacheKey(req Request) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%t|%g|%s",
		req.Provider, req.Language, req.VoiceID, req.Female, req.Speed, req.Text)))
	return "speech:audio:" + hex.EncodeToString(sum[:])
}

func (redisAudioCache) Get(req Request) ([]byte, bool) {
	audio, err := cache.GetBytes(cacheKey(req))
	if err != nil || len(audio) == 0 {
		return nil, false
	}
	return audio, true
}

func (redisAudioCache) Set(req Request, audio []byte) {
	if err := cache.Set(cacheKey(req), audio, audioCacheTTL); err != nil {
		log.Warnf("[Speech] Audio cache write failed: %v", err)
	}
}

// NopAudioCache disables caching.
type NopAudioCache struct{}

func (NopAudioCache) Get(Request) ([]byte, bool) { return nil, false }
func (NopAudioCache) Set(Request, []byte)        {}
