package entity

import (
	"testing"

	"github.com/kiosk404/loamy/pkg/utils/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeJSONKeepsResultVariant(t *testing.T) {
	in := Success(ToolEvaluateEligibility, &EligibilityResult{Score: 780, Limit: 50000})
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"tool":"evaluate_eligibility","result":{"score":780,"limit":50000}}`, string(data))

	var out Envelope
	require.NoError(t, json.Unmarshal(data, &out))
	res, ok := out.Result.(*EligibilityResult)
	require.True(t, ok)
	assert.Equal(t, 50000.0, res.Limit)
	assert.True(t, out.OK())
}

func TestEnvelopeJSONFailure(t *testing.T) {
	in := Failure(ToolGenerateDocument, ToolErrInvalidArguments, "parameter %q is required", "amount")
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Envelope
	require.NoError(t, json.Unmarshal(data, &out))
	assert.False(t, out.OK())
	assert.Nil(t, out.Result)
	assert.Equal(t, ToolErrInvalidArguments, out.Error.Kind)
	assert.Contains(t, out.Error.Message, "amount")
}

func TestEnvelopeJSONUnknownTool(t *testing.T) {
	var out Envelope
	err := json.Unmarshal([]byte(`{"ok":true,"tool":"launch_rocket","result":{}}`), &out)
	assert.Error(t, err)
}

func TestIsNilResult(t *testing.T) {
	var status *StatusResult
	var doc *DocumentResult
	assert.True(t, IsNilResult(nil))
	assert.True(t, IsNilResult(status))
	assert.True(t, IsNilResult(doc))
	assert.False(t, IsNilResult(&EligibilityResult{Score: 700}))
}
