package prompts

import "errors"

// ErrInvalidStage is returned for stage names outside the known set.
var ErrInvalidStage = errors.New("stage must be classify, extract, authenticate, or cross_validate")
