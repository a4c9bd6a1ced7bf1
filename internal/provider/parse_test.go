package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON_Plain(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSON(`{"a":1}`))
}

func TestCleanJSON_Fenced(t *testing.T) {
	in := "```json\n{\"keep\": true}\n```"
	assert.Equal(t, `{"keep": true}`, cleanJSON(in))
}

func TestCleanJSON_BareFence(t *testing.T) {
	in := "```\n{\"keep\": false}\n```"
	assert.Equal(t, `{"keep": false}`, cleanJSON(in))
}

func TestCleanJSON_TrailingProse(t *testing.T) {
	in := `Here is the result: {"score": 78} I hope that helps!`
	assert.Equal(t, `{"score": 78}`, cleanJSON(in))
}

func TestDecodeJSON_Strict(t *testing.T) {
	var v struct {
		Keep bool `json:"keep"`
	}
	require.NoError(t, decodeJSON(`{"keep": true}`, &v))
	assert.True(t, v.Keep)
}

func TestDecodeJSON_FencedWithProse(t *testing.T) {
	var v struct {
		Score int `json:"score"`
	}
	in := "Sure! Here you go:\n```json\n{\"score\": 42}\n```\nLet me know if you need more."
	require.NoError(t, decodeJSON(in, &v))
	assert.Equal(t, 42, v.Score)
}

func TestDecodeJSON_Unparseable(t *testing.T) {
	var v struct{}
	err := decodeJSON("I could not find any information.", &v)
	require.Error(t, err)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindInvalidResponse, perr.Kind)
	assert.False(t, perr.Retryable())
}
