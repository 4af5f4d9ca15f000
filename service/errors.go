package service

import (
	"errors"
	"fmt"

	"github.com/forestrie/go-bloomfilter/errkind"
)

var (
	ErrConfig         = errors.New("service: invalid configuration")
	ErrUnknownFilter  = errors.New("service: unknown filter")
	ErrFilterTooLarge = fmt.Errorf("service: filter exceeds the configured bit limit: %w", errkind.ErrRangeExceeded)
)
