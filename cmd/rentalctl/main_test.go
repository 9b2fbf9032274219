package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/rentals/domain"
)

func TestExitCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"validation":     {domain.ErrEmptyTitle, 2},
		"transition":     {fmt.Errorf("activate: %w", domain.ErrInvalidTransition), 2},
		"capture":        {domain.ErrPermissionDenied, 2},
		"transport":      {&domain.TransportError{Method: "GET", Path: "/imovel", StatusCode: 502}, 3},
		"stale snapshot": {domain.ErrSnapshotStale, 1},
		"plain error":    {errors.New("boom"), 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, exitCode(tc.err))
		})
	}
}
