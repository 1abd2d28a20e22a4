package safestream

import "errors"

// ErrRepeatCountExceeded is the terminal error a SendingDataAction
// fails with when one of its bytes' chunk hit max_repeat_count without
// being confirmed.
var ErrRepeatCountExceeded = errors.New("safestream: max repeat count exceeded")
