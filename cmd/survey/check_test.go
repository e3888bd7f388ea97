package main

import (
	"accioncsat/internal/schema"
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckResponsesIncomplete(t *testing.T) {
	survey, err := schema.Default()
	require.NoError(t, err)

	var out bytes.Buffer
	err = checkResponses(&out, strings.NewReader(`{"q1":"5","q2":"  ","q17":[],"q99":"x"}`), survey)
	require.ErrorIs(t, err, errIncomplete)
	assert.Contains(t, err.Error(), "first is q2")
	assert.Contains(t, out.String(), "1 of 20 required questions answered")
	assert.Contains(t, out.String(), "missing q17:")
	assert.Contains(t, out.String(), `ignoring unknown question "q99"`)
	assert.NotContains(t, out.String(), "missing q1:")
	assert.NotContains(t, out.String(), "invalid q2")
}

func TestCheckResponsesComplete(t *testing.T) {
	survey, err := schema.Default()
	require.NoError(t, err)

	responses := map[string]interface{}{}
	for _, q := range survey.Questions() {
		switch {
		case q.IsMulti():
			responses[q.Key] = []string{q.Options[0].Value}
		case len(q.Options) > 0:
			responses[q.Key] = q.Options[0].Value
		default:
			responses[q.Key] = "4"
		}
	}
	data, err := json.Marshal(responses)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, checkResponses(&out, bytes.NewReader(data), survey))
	assert.Contains(t, out.String(), "complete")
}

func TestCheckResponsesValuesFollowSchema(t *testing.T) {
	survey, err := schema.Default()
	require.NoError(t, err)

	responses := map[string]interface{}{}
	for _, q := range survey.Questions() {
		responses[q.Key] = "zzz"
	}
	responses["q17"] = "not-a-list"
	responses["q1"] = []string{"9"}
	data, err := json.Marshal(responses)
	require.NoError(t, err)

	var out bytes.Buffer
	err = checkResponses(&out, bytes.NewReader(data), survey)
	require.ErrorIs(t, err, errIncomplete)
	assert.NotContains(t, out.String(), "complete\n")
	for _, key := range []string{"q1", "q2", "q17", "q18"} {
		assert.Contains(t, out.String(), "invalid "+key+":")
		assert.Contains(t, out.String(), "missing "+key+":")
	}
	// Text questions take any string
	assert.NotContains(t, out.String(), "missing q12:")
}

func TestCheckResponsesAcceptsLowRating(t *testing.T) {
	survey, err := schema.Default()
	require.NoError(t, err)

	var out bytes.Buffer
	err = checkResponses(&out, strings.NewReader(`{"q1":"1"}`), survey)
	require.ErrorIs(t, err, errIncomplete)
	assert.NotContains(t, out.String(), "invalid q1")
	assert.NotContains(t, out.String(), "missing q1:")
}

func TestCheckResponsesBadJSON(t *testing.T) {
	survey, err := schema.Default()
	require.NoError(t, err)

	err = checkResponses(&bytes.Buffer{}, strings.NewReader(`{"q1": 5}`), survey)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errIncomplete)
}

func TestPrintSchema(t *testing.T) {
	survey, err := schema.Default()
	require.NoError(t, err)

	var out bytes.Buffer
	printSchema(&out, survey)
	assert.Contains(t, out.String(), survey.Title)
	assert.Contains(t, out.String(), "[q17]")
	assert.Contains(t, out.String(), "N/A")
}
