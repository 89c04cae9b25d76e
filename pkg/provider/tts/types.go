package tts

import "github.com/hirecoach/interviewcore/pkg/types"

// VoiceProfile is an alias for the canonical voice-profile type, kept local so
// callers within this package don't need to import pkg/types directly.
type VoiceProfile = types.VoiceProfile
