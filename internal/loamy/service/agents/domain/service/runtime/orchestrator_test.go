package runtime

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/service/lending"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/store/inmemory"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/store/seed"
	"github.com/kiosk404/loamy/internal/loamy/service/documents"
	"github.com/kiosk404/loamy/internal/loamy/service/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lendingRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	store := inmemory.NewCustomerStore()
	require.NoError(t, seed.Load(context.Background(), store))
	docs, err := documents.NewGenerator(documents.Config{Dir: filepath.Join(t.TempDir(), "static")})
	require.NoError(t, err)

	r := tools.NewRegistry()
	require.NoError(t, lending.New(store, docs).Register(r))
	return r
}

func newConversation(t *testing.T, text string) *entity.Conversation {
	t.Helper()
	conv, err := entity.NewConversation(entity.NewUserTurn(text))
	require.NoError(t, err)
	return conv
}

func toolRequests(conv *entity.Conversation) []string {
	var names []string
	for _, turn := range conv.Turns() {
		if turn.Kind == entity.TurnToolRequest {
			names = append(names, turn.ToolName)
		}
	}
	return names
}

func lastResult(conv *entity.Conversation, tool entity.ToolID) *entity.Envelope {
	turns := conv.Turns()
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Kind == entity.TurnToolResult && turns[i].ToolName == tool.String() {
			return turns[i].Result
		}
	}
	return nil
}

// expectResult asserts that the last message sent to the backend is the
// result of tool and carries fragment.
func expectResult(t *testing.T, tool, fragment string, next *schema.Message) func(context.Context, *Request) (*schema.Message, error) {
	return func(_ context.Context, req *Request) (*schema.Message, error) {
		last := req.Messages[len(req.Messages)-1]
		assert.Equal(t, schema.Tool, last.Role)
		assert.Equal(t, tool, last.ToolName)
		assert.Contains(t, last.Content, fragment)
		return next, nil
	}
}

func TestGoldenPath(t *testing.T) {
	backend := (&scriptedBackend{}).
		then(toolCallReply("verify_status", `{"customer_name":"alice"}`)).
		thenFunc(expectResult(t, "verify_status", `"verified"`,
			toolCallReply("evaluate_eligibility", `{"customer_name":"alice"}`))).
		thenFunc(expectResult(t, "evaluate_eligibility", `"limit":50000`,
			toolCallReply("generate_document", `{"customer_name":"alice","amount":20000}`))).
		then(textReply("Great news! Your sanction letter is ready!"))

	o := NewOrchestrator(backend, lendingRegistry(t), StaticDirective("be Loamy"), LoopConfig{})
	conv := newConversation(t, "I'm Alice and I'd like 20000")
	out := o.Run(context.Background(), conv)

	require.True(t, out.OK(), "%v", out.Failure)
	assert.Equal(t, "Great news! Your sanction letter is ready!", out.Reply)
	assert.Equal(t, 4, out.Steps)
	assert.Equal(t, 4, backend.calls())
	assert.Equal(t, []string{"verify_status", "evaluate_eligibility", "generate_document"}, toolRequests(conv))
	assert.Equal(t, 8, conv.Len())

	env := lastResult(conv, entity.ToolGenerateDocument)
	require.NotNil(t, env)
	require.True(t, env.OK())
	doc := env.Result.(*entity.DocumentResult)
	assert.Equal(t, "/static/sanction_alice.html", doc.ArtifactLink)
	assert.Equal(t, 20000.0, doc.Amount)

	// Every request carries the directive and the full catalog.
	for _, req := range backend.requests {
		assert.Equal(t, "be Loamy", req.Messages[0].Content)
		assert.Len(t, req.Tools, 3)
	}
}

func TestStatusGate(t *testing.T) {
	backend := (&scriptedBackend{}).
		then(toolCallReply("verify_status", `{"customer_name":"bob"}`)).
		thenFunc(expectResult(t, "verify_status", `"pending"`,
			textReply("Your verification is still pending, please check back soon.")))

	o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{})
	conv := newConversation(t, "I'm Bob")
	out := o.Run(context.Background(), conv)

	require.True(t, out.OK())
	assert.Equal(t, 2, out.Steps)
	assert.Equal(t, []string{"verify_status"}, toolRequests(conv))
}

func TestScoreGate(t *testing.T) {
	backend := (&scriptedBackend{}).
		then(toolCallReply("verify_status", `{"customer_name":"charlie"}`)).
		then(toolCallReply("evaluate_eligibility", `{"customer_name":"charlie"}`)).
		thenFunc(expectResult(t, "evaluate_eligibility", `"score":550`,
			textReply("I'm sorry, the minimum credit score is 650.")))

	o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{})
	conv := newConversation(t, "I'm Charlie, I want 5000")
	out := o.Run(context.Background(), conv)

	require.True(t, out.OK())
	assert.Equal(t, []string{"verify_status", "evaluate_eligibility"}, toolRequests(conv))
	env := lastResult(conv, entity.ToolEvaluateEligibility)
	require.NotNil(t, env)
	assert.Equal(t, &entity.EligibilityResult{Score: 550, Limit: 10000}, env.Result)
	assert.Nil(t, lastResult(conv, entity.ToolGenerateDocument))
}

func TestLimitCap(t *testing.T) {
	backend := (&scriptedBackend{}).
		then(toolCallReply("verify_status", `{"customer_name":"david"}`)).
		then(toolCallReply("evaluate_eligibility", `{"customer_name":"david"}`)).
		then(toolCallReply("generate_document", `{"customer_name":"david","amount":20000}`)).
		then(textReply("Your sanction letter is ready!"))

	o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{})
	conv := newConversation(t, "David here, 20000 please")
	out := o.Run(context.Background(), conv)

	require.True(t, out.OK())
	eligibility := lastResult(conv, entity.ToolEvaluateEligibility)
	require.NotNil(t, eligibility)
	assert.Equal(t, 15000.0, eligibility.Result.(*entity.EligibilityResult).Limit)

	doc := lastResult(conv, entity.ToolGenerateDocument)
	require.NotNil(t, doc)
	require.True(t, doc.OK())
	assert.Equal(t, 15000.0, doc.Result.(*entity.DocumentResult).Amount)
}

func TestStepBudgetIsExact(t *testing.T) {
	for _, budget := range []int{1, 3, 10} {
		backend := &scriptedBackend{}
		for i := 0; i < budget+5; i++ {
			backend.then(toolCallReply("verify_status", `{"customer_name":"alice"}`))
		}
		o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{MaxSteps: budget})
		out := o.Run(context.Background(), newConversation(t, "loop forever"))

		require.False(t, out.OK())
		assert.Equal(t, entity.FailureStepBudgetExceeded, out.Failure.Kind)
		assert.Equal(t, budget, out.Steps)
		assert.Equal(t, budget, backend.calls())
	}
}

func TestMalformedResponseFails(t *testing.T) {
	both := toolCallReply("verify_status", `{"customer_name":"alice"}`)
	both.Content = "checking"
	backend := (&scriptedBackend{}).then(both)

	o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{})
	conv := newConversation(t, "hi")
	out := o.Run(context.Background(), conv)

	require.False(t, out.OK())
	assert.Equal(t, entity.FailureMalformedResponse, out.Failure.Kind)
	assert.Equal(t, 1, conv.Len())
}

func TestBackendUnreachable(t *testing.T) {
	backend := (&scriptedBackend{}).thenFunc(func(context.Context, *Request) (*schema.Message, error) {
		return nil, errors.New("503 Service Unavailable")
	})

	o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{})
	out := o.Run(context.Background(), newConversation(t, "hi"))

	require.False(t, out.OK())
	assert.Equal(t, entity.FailureBackendUnreachable, out.Failure.Kind)
	assert.Contains(t, out.Failure.Message, "503")
	assert.Equal(t, 1, out.Steps)
}

func TestBackendTimeout(t *testing.T) {
	backend := (&scriptedBackend{}).thenFunc(func(ctx context.Context, _ *Request) (*schema.Message, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{BackendTimeout: 20 * time.Millisecond})
	out := o.Run(context.Background(), newConversation(t, "hi"))

	require.False(t, out.OK())
	assert.Equal(t, entity.FailureBackendUnreachable, out.Failure.Kind)
}

func TestCancellationAborts(t *testing.T) {
	t.Run("before start", func(t *testing.T) {
		backend := &scriptedBackend{}
		o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out := o.Run(ctx, newConversation(t, "hi"))
		require.False(t, out.OK())
		assert.Equal(t, entity.FailureAborted, out.Failure.Kind)
		assert.Equal(t, 0, backend.calls())
	})

	t.Run("during backend call", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		backend := (&scriptedBackend{}).
			then(toolCallReply("verify_status", `{"customer_name":"alice"}`)).
			thenFunc(func(ctx context.Context, _ *Request) (*schema.Message, error) {
				cancel()
				<-ctx.Done()
				return nil, ctx.Err()
			})

		o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{})
		conv := newConversation(t, "hi")
		out := o.Run(ctx, conv)

		require.False(t, out.OK())
		assert.Equal(t, entity.FailureAborted, out.Failure.Kind)
		assert.Equal(t, 2, backend.calls())
		// The completed tool exchange stays in the conversation.
		assert.Equal(t, 3, conv.Len())
	})
}

func TestToolFailureIsFedBack(t *testing.T) {
	backend := (&scriptedBackend{}).
		then(toolCallReply("transfer_funds", `{"amount":100}`)).
		thenFunc(expectResult(t, "transfer_funds", `"UnknownTool"`,
			toolCallReply("verify_status", `{}`))).
		thenFunc(expectResult(t, "verify_status", `"InvalidArguments"`,
			textReply("Could you tell me your name?")))

	o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{})
	conv := newConversation(t, "hi")
	out := o.Run(context.Background(), conv)

	require.True(t, out.OK())
	assert.Equal(t, 3, out.Steps)
	assert.Equal(t, entity.ToolErrUnknownTool, lastResult(conv, "transfer_funds").Error.Kind)
}

func TestRegistryFrozenByOrchestrator(t *testing.T) {
	r := lendingRegistry(t)
	NewOrchestrator(&scriptedBackend{}, r, nil, LoopConfig{})
	err := r.Register(entity.ToolSignature{Name: entity.ToolVerifyStatus}, func(context.Context, tools.Arguments) (entity.ToolResult, error) {
		return nil, nil
	})
	assert.Error(t, err)
}

func TestStream(t *testing.T) {
	backend := (&scriptedBackend{}).
		then(toolCallReply("verify_status", `{"customer_name":"alice"}`)).
		then(textReply("You're verified!"))

	o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{})
	sr := o.Stream(context.Background(), newConversation(t, "I'm Alice"))
	defer sr.Close()

	var types []string
	var last *entity.LoopEvent
	for {
		ev, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		types = append(types, string(ev.Type))
		last = ev
	}
	assert.Equal(t, "tool_call,tool_result,reply", strings.Join(types, ","))
	require.NotNil(t, last.Outcome)
	assert.Equal(t, "You're verified!", last.Outcome.Reply)
	assert.Equal(t, 2, last.Outcome.Steps)
}

func TestStreamFailure(t *testing.T) {
	backend := (&scriptedBackend{}).then(schema.AssistantMessage("", nil))

	o := NewOrchestrator(backend, lendingRegistry(t), nil, LoopConfig{})
	sr := o.Stream(context.Background(), newConversation(t, "hi"))
	defer sr.Close()

	ev, err := sr.Recv()
	require.NoError(t, err)
	assert.Equal(t, entity.EventFailure, ev.Type)
	assert.Equal(t, entity.FailureMalformedResponse, ev.Outcome.Failure.Kind)

	_, err = sr.Recv()
	assert.ErrorIs(t, err, io.EOF)
}
