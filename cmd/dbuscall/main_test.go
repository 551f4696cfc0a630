package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOptionsFromFlags(t *testing.T) {
	tt := []struct {
		name                                    string
		addr                                    string
		uid                                     int
		hasUID, serialCheck                     bool
		readBuf                                 int
		wantLen                                 int
	}{
		{name: "defaults", readBuf: 128, wantLen: 1},
		{name: "with address", addr: "/run/user/1000/bus", readBuf: 128, wantLen: 2},
		{name: "with uid", uid: 1000, hasUID: true, readBuf: 128, wantLen: 2},
		{name: "with serial check", serialCheck: true, readBuf: 128, wantLen: 2},
		{
			name: "every flag set", addr: "/run/user/1000/bus", uid: 1000,
			hasUID: true, serialCheck: true, readBuf: 256, wantLen: 4,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			opts := optionsFromFlags(tc.addr, tc.uid, tc.hasUID, tc.readBuf, tc.serialCheck)
			require.Len(t, opts, tc.wantLen)
			for _, opt := range opts {
				require.NotNil(t, opt)
			}
		})
	}
}
