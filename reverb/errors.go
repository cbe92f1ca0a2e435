package reverb

import "errors"

// Errors returned by Engine.Prepare and Tuning.Validate.
var (
	ErrInvalidSampleRate = errors.New("reverb: sample rate must be positive and finite")
	ErrInvalidChannels   = errors.New("reverb: channel count must be positive")
	ErrInvalidBlockSize  = errors.New("reverb: maximum block size must be positive")
	ErrInvalidTuning     = errors.New("reverb: invalid tuning")
	ErrNotPrepared       = errors.New("reverb: engine used before Prepare")
	ErrChannelMismatch   = errors.New("reverb: block has more channels than prepared")
)
