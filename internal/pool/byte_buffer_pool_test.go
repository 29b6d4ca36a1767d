package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetScratch_Length(t *testing.T) {
	s := GetScratch(100)
	require.Len(t, s.B, 100)
	PutScratch(s)

	s = GetScratch(ScratchDefaultSize * 2)
	require.Len(t, s.B, ScratchDefaultSize*2)
	PutScratch(s)
}

func TestPutScratch_DropsOversized(t *testing.T) {
	s := GetScratch(ScratchMaxThreshold + 1)
	require.Len(t, s.B, ScratchMaxThreshold+1)
	// must not panic, and the buffer is silently dropped
	PutScratch(s)
	PutScratch(nil)
}

func TestScratch_Reuse(t *testing.T) {
	s := GetScratch(64)
	s.B[0] = 0xAA
	PutScratch(s)

	again := GetScratch(32)
	require.Len(t, again.B, 32)
	PutScratch(again)
}
