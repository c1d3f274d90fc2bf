package io

import (
	"errors"

	"github.com/ezrec/octet/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull = errors.New(f("channel full"))
)
