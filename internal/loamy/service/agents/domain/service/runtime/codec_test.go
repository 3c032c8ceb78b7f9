package runtime

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/pkg/errno"
	"github.com/kiosk404/loamy/pkg/utils/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponseText(t *testing.T) {
	d, err := NewTurnCodec().DecodeResponse(textReply("Hello there"))
	require.NoError(t, err)
	assert.Equal(t, DecodedText, d.Kind)
	assert.Equal(t, "Hello there", d.Text)
}

func TestDecodeResponseToolCall(t *testing.T) {
	d, err := NewTurnCodec().DecodeResponse(toolCallReply("verify_status", `{"customer_name":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, DecodedToolCall, d.Kind)
	assert.Equal(t, "call-verify_status", d.CallID)
	assert.Equal(t, "verify_status", d.ToolName)
	assert.Equal(t, map[string]interface{}{"customer_name": "alice"}, d.Arguments)

	// Missing id falls back to the tool name; missing arguments decode empty.
	msg := schema.AssistantMessage("", []schema.ToolCall{{Function: schema.FunctionCall{Name: "verify_status"}}})
	d, err = NewTurnCodec().DecodeResponse(msg)
	require.NoError(t, err)
	assert.Equal(t, "verify_status", d.CallID)
	assert.Empty(t, d.Arguments)
	assert.NotNil(t, d.Arguments)
}

func TestDecodeResponseMalformed(t *testing.T) {
	both := toolCallReply("verify_status", `{}`)
	both.Content = "Let me check."

	two := toolCallReply("verify_status", `{}`)
	two.ToolCalls = append(two.ToolCalls, toolCallReply("evaluate_eligibility", `{}`).ToolCalls...)

	cases := map[string]*schema.Message{
		"nil":          nil,
		"neither":      schema.AssistantMessage("  ", nil),
		"both":         both,
		"two calls":    two,
		"no name":      toolCallReply("", `{}`),
		"bad args":     toolCallReply("verify_status", `{"customer_name":`),
		"args not obj": toolCallReply("verify_status", `["alice"]`),
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTurnCodec().DecodeResponse(msg)
			assert.ErrorIs(t, err, errno.ErrMalformedReply)
		})
	}
}

func TestEncodeRequest(t *testing.T) {
	env := entity.Success(entity.ToolVerifyStatus, &entity.StatusResult{Status: entity.StatusVerified})
	conv, err := entity.NewConversation(
		entity.NewUserTurn("I'm Alice"),
		entity.NewToolRequestTurn("", "verify_status", map[string]interface{}{"customer_name": "alice"}),
		entity.NewToolResultTurn("", "verify_status", env),
		entity.NewAgentTurn("You're verified!"),
	)
	require.NoError(t, err)

	catalog := []entity.ToolSignature{{
		Name:       entity.ToolVerifyStatus,
		Parameters: []entity.Parameter{{Name: "customer_name", Type: entity.ParamString, Required: true}},
	}}
	req, err := NewTurnCodec().EncodeRequest(conv, catalog, "be nice")
	require.NoError(t, err)
	require.Len(t, req.Messages, 5)
	require.Len(t, req.Tools, 1)
	assert.Equal(t, "verify_status", req.Tools[0].Name)

	assert.Equal(t, schema.System, req.Messages[0].Role)
	assert.Equal(t, "be nice", req.Messages[0].Content)
	assert.Equal(t, schema.User, req.Messages[1].Role)

	call := req.Messages[2]
	assert.Equal(t, schema.Assistant, call.Role)
	require.Len(t, call.ToolCalls, 1)
	assert.Equal(t, "verify_status", call.ToolCalls[0].ID)
	assert.JSONEq(t, `{"customer_name":"alice"}`, call.ToolCalls[0].Function.Arguments)

	result := req.Messages[3]
	assert.Equal(t, schema.Tool, result.Role)
	assert.Equal(t, "verify_status", result.ToolCallID)
	var decoded entity.Envelope
	require.NoError(t, json.UnmarshalString(result.Content, &decoded))
	assert.Equal(t, env, decoded)

	assert.Equal(t, schema.Assistant, req.Messages[4].Role)
	assert.Equal(t, "You're verified!", req.Messages[4].Content)
}

func TestEncodeRequestWithoutDirective(t *testing.T) {
	conv, err := entity.NewConversation(entity.NewUserTurn("hi"))
	require.NoError(t, err)
	req, err := NewTurnCodec().EncodeRequest(conv, nil, "")
	require.NoError(t, err)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, schema.User, req.Messages[0].Role)
	assert.Empty(t, req.Tools)
}
