package controllers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEntryRequestAcceptsNumericJSON(t *testing.T) {
	payload := `{
		"date": "2024-03-05",
		"time": "morning",
		"sleep": 4,
		"mood": 3.7,
		"hyperactivity": null,
		"appetite": "",
		"weight": 42.5,
		"medication_id": 7,
		"dose": "10mg"
	}`

	var req recordEntryRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	assert.Equal(t, "4", string(req.Sleep))
	assert.Equal(t, "3.7", string(req.Mood))
	assert.Equal(t, "", string(req.Hyperactivity))
	assert.Equal(t, "", string(req.Appetite))
	assert.Equal(t, "42.5", string(req.Weight))
	assert.Equal(t, "7", string(req.MedicationID))
	assert.Equal(t, "10mg", string(req.Dose))
}

func TestRecordEntryRequestNumericAndQuotedAgree(t *testing.T) {
	numeric := `{"date":"2024-03-05","time":"noon","sleep":4,"weight":42.5,"medication_id":7}`
	quoted := `{"date":"2024-03-05","time":"noon","sleep":"4","weight":"42.5","medication_id":"7"}`

	var a, b recordEntryRequest
	require.NoError(t, json.Unmarshal([]byte(numeric), &a))
	require.NoError(t, json.Unmarshal([]byte(quoted), &b))

	assert.Equal(t, a, b, "numeric and quoted payloads must normalize identically")
}
