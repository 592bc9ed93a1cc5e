package tg

import (
	"errors"
	"testing"
)

func TestIsSystemErr(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Too Many Requests: retry after 5 (429)"), true},
		{errors.New("Bad Gateway 502"), true},
		{errors.New("context deadline exceeded (Client.Timeout exceeded) timeout"), true},
		{errors.New("Bad Request: message is not modified"), false},
		{errors.New("Bad Request: chat not found"), false},
		{errors.New("something odd"), false},
	}
	for _, tc := range cases {
		if got := isSystemErr(tc.err); got != tc.want {
			t.Errorf("isSystemErr(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
