package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeDuration(t *testing.T) {
	d, err := parseProbeDuration(`{"streams":[{"codec_type":"video"}],"format":{"duration":"12.480000","format_name":"mov,mp4"}}`)
	require.NoError(t, err)
	assert.InDelta(t, 12.48, d, 0.0001)

	d, err = parseProbeDuration(`{"format":{}}`)
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = parseProbeDuration("not json")
	assert.Error(t, err)
}
